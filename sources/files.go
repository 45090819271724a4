// Package sources finds and retrieves the images that go into a document.
package sources

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"img2pdf/contracts"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".tif":  true,
	".tiff": true,
	".bmp":  true,
	".webp": true,
}

func IsImagePath(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// ListImages returns the supported image files directly inside dir, sorted
// by name, and their total size. AppleDouble "._" files are skipped.
func ListImages(dir string) ([]string, int64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0, err
	}
	paths := make([]string, 0, len(entries))
	var size int64
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), "._") {
			continue
		}
		if !IsImagePath(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
		if info, err := entry.Info(); err == nil {
			size += info.Size()
		}
	}
	sort.Strings(paths)
	return paths, size, nil
}

// ImageFolders returns one folder per sub-directory of root that holds at
// least one image.
func ImageFolders(root string) ([]contracts.ImageFolder, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	folders := make([]contracts.ImageFolder, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		paths, size, err := ListImages(dir)
		if err != nil {
			return nil, err
		}
		if len(paths) == 0 {
			continue
		}
		folders = append(folders, contracts.ImageFolder{
			ImagePaths: paths,
			Name:       entry.Name(),
			Path:       dir,
			ImagesSize: size,
		})
	}
	return folders, nil
}

// Expand replaces every directory in srcs with the images it holds. Files
// and URLs are kept as given, in order.
func Expand(srcs []string) ([]string, error) {
	out := make([]string, 0, len(srcs))
	for _, src := range srcs {
		if isURL(src) {
			out = append(out, src)
			continue
		}
		info, err := os.Stat(src)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, src)
			continue
		}
		paths, _, err := ListImages(src)
		if err != nil {
			return nil, err
		}
		out = append(out, paths...)
	}
	return out, nil
}
