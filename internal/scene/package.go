package scene

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SceneFileExt is the extension of a scene file inside a package archive.
const SceneFileExt = ".bip"

// PackageFileExt is the extension of a scene package archive.
const PackageFileExt = ".ksp"

// packageAssetDir holds detected assets inside archives written by
// FileSession.
const packageAssetDir = "assets"

// UnpackDirName is the directory under the work directory that receives the
// unpacked archive.
const UnpackDirName = "unpack"

// Packager saves the open scene and its assets as a single archive.
type Packager interface {
	SavePackage(path string) error
}

// Package lists the files extracted from a package archive.
type Package struct {
	SceneFile  string
	InputFiles []string
}

// PackagePath returns the cleaned archive path for name inside dir.
func PackagePath(dir, name string) string {
	return filepath.Clean(filepath.Join(dir, name))
}

// SavePackage asks the host to write a package archive named name in dir and
// returns its path.
func SavePackage(p Packager, dir, name string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create package directory: %w", err)
	}
	path := PackagePath(dir, name)
	if err := p.SavePackage(path); err != nil {
		return "", fmt.Errorf("save package: %w", err)
	}
	return path, nil
}

// PackageScene saves the scene as a package under workDir/ksp and unpacks it
// into workDir/unpack.
func PackageScene(p Packager, workDir, name string) (Package, error) {
	archive, err := SavePackage(p, filepath.Join(workDir, "ksp"), name)
	if err != nil {
		return Package{}, err
	}
	return UnpackPackage(archive, workDir)
}

// UnpackPackage extracts the archive into workDir/unpack. The archive must
// hold exactly one scene file; every other file becomes an input file.
func UnpackPackage(archivePath, workDir string) (Package, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return Package{}, fmt.Errorf("open package %s: %w", archivePath, err)
	}
	defer reader.Close()

	dest := filepath.Join(workDir, UnpackDirName)
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return Package{}, fmt.Errorf("create unpack directory: %w", err)
	}

	var pkg Package
	var scenes []string
	for _, file := range reader.File {
		if file.FileInfo().IsDir() {
			continue
		}
		target, err := extractFile(file, dest)
		if err != nil {
			return Package{}, err
		}
		if strings.EqualFold(filepath.Ext(target), SceneFileExt) {
			scenes = append(scenes, target)
			continue
		}
		pkg.InputFiles = append(pkg.InputFiles, target)
	}

	switch len(scenes) {
	case 0:
		return Package{}, fmt.Errorf("package %s contains no %s scene file", archivePath, SceneFileExt)
	case 1:
		pkg.SceneFile = scenes[0]
	default:
		return Package{}, fmt.Errorf("package %s contains %d scene files", archivePath, len(scenes))
	}
	sort.Strings(pkg.InputFiles)
	return pkg, nil
}

// SavePackage writes the scene file and every detected asset into a zip
// archive at path. Assets land under assets/, renamed when two share a base
// name.
func (s *FileSession) SavePackage(path string) error {
	desc := s.Describe()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create package: %w", err)
	}
	zw := zip.NewWriter(f)
	writeErr := addToArchive(zw, desc.ScenePath, filepath.Base(desc.ScenePath))
	used := map[string]int{}
	for _, asset := range desc.DetectedAssets {
		if writeErr != nil {
			break
		}
		asset = strings.TrimSpace(asset)
		if asset == "" {
			continue
		}
		base := filepath.Base(asset)
		if n := used[base]; n > 0 {
			ext := filepath.Ext(base)
			base = fmt.Sprintf("%s_%d%s", strings.TrimSuffix(base, ext), n, ext)
		}
		used[filepath.Base(asset)]++
		writeErr = addToArchive(zw, asset, packageAssetDir+"/"+base)
	}
	if err := zw.Close(); err != nil && writeErr == nil {
		writeErr = fmt.Errorf("finish package: %w", err)
	}
	if err := f.Close(); err != nil && writeErr == nil {
		writeErr = fmt.Errorf("close package: %w", err)
	}
	if writeErr != nil {
		_ = os.Remove(path)
		return writeErr
	}
	return nil
}

func addToArchive(zw *zip.Writer, source, name string) error {
	in, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("package %s: %w", source, err)
	}
	defer in.Close()
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("add %s to package: %w", name, err)
	}
	if _, err := io.Copy(w, in); err != nil {
		return fmt.Errorf("copy %s into package: %w", source, err)
	}
	return nil
}

func extractFile(file *zip.File, dest string) (string, error) {
	target := filepath.Join(dest, filepath.FromSlash(file.Name))
	rel, err := filepath.Rel(dest, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("package entry %q escapes unpack directory", file.Name)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create directory for %s: %w", file.Name, err)
	}

	in, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open package entry %s: %w", file.Name, err)
	}
	defer in.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", target, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return "", fmt.Errorf("extract %s: %w", file.Name, err)
	}
	if err := out.Close(); err != nil {
		return "", errors.Join(fmt.Errorf("close %s", target), err)
	}
	return target, nil
}
