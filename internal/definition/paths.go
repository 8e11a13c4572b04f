package definition

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charlievieth/fastwalk"
	"github.com/sirupsen/logrus"
)

// countdownSuffix marks definition files found by directory discovery.
const countdownSuffix = ".countdown"

const streamBufferSize = 64

//nolint:gochecknoglobals // static skip list.
var skipDirs = []string{
	".git",
	"node_modules",
	"vendor",
	".cache",
}

// Discover walks root and streams the paths of definition files over a
// channel. The channel is closed when walking completes or ctx is canceled.
func Discover(ctx context.Context, root string) <-chan string {
	out := make(chan string, streamBufferSize)
	go func() {
		defer close(out)
		conf := fastwalk.DefaultConfig
		err := fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil // Skip unreadable entries.
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			if d.IsDir() {
				if isSkippedDir(d.Name()) {
					return fs.SkipDir
				}
				return nil
			}
			if !isDefinitionFilename(d.Name()) {
				return nil
			}
			select {
			case out <- path:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		})
		if err != nil {
			logrus.Debugf("walk %s: %v", root, err)
		}
	}()
	return out
}

// Resolve expands a mix of files and directories into definition file paths.
// Files are returned as given; directories are walked with Discover.
func Resolve(ctx context.Context, targets []string) ([]string, error) {
	var paths []string
	for _, target := range targets {
		info, err := os.Stat(target)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, target)
			continue
		}
		var found []string
		for path := range Discover(ctx, target) {
			found = append(found, path)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		// fastwalk visits entries concurrently.
		sort.Strings(found)
		paths = append(paths, found...)
	}
	return paths, nil
}

func isDefinitionFilename(name string) bool {
	if !isJSONOrYAMLFile(name) {
		return false
	}
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	return strings.HasSuffix(strings.ToLower(stem), countdownSuffix)
}

func isSkippedDir(name string) bool {
	for _, s := range skipDirs {
		if strings.EqualFold(name, s) {
			return true
		}
	}
	return false
}

func isYAMLFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func isJSONFile(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".json"
}

func isJSONOrYAMLFile(path string) bool {
	return isJSONFile(path) || isYAMLFile(path)
}
