// Package textutil sanitizes user-provided names for use as path segments.
package textutil
