package mods

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/klauspost/compress/zip"
)

// infoPattern matches info.json at an archive's root or inside its single top folder.
const infoPattern = "{info.json,*/info.json}"

// source reads files from a mod by slash-separated path relative to the mod root.
type source interface {
	ReadFile(name string) ([]byte, error)
	Close() error
}

type dirSource struct {
	root string
}

func (s dirSource) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.root, filepath.FromSlash(name)))
}

func (s dirSource) Close() error {
	return nil
}

type zipSource struct {
	rc    *zip.ReadCloser
	files map[string]*zip.File
}

// openZip opens an archive and indexes the files under the folder holding info.json.
func openZip(archive string) (*zipSource, error) {
	rc, err := zip.OpenReader(archive)
	if err != nil {
		return nil, err
	}

	prefix, ok := zipRoot(rc.File)
	if !ok {
		rc.Close()
		return nil, fs.ErrNotExist
	}

	files := make(map[string]*zip.File, len(rc.File))
	for _, f := range rc.File {
		if len(f.Name) <= len(prefix) || f.Name[:len(prefix)] != prefix {
			continue
		}
		files[f.Name[len(prefix):]] = f
	}
	return &zipSource{rc: rc, files: files}, nil
}

// zipRoot returns the shallowest folder holding info.json, with a trailing slash.
func zipRoot(files []*zip.File) (string, bool) {
	best, found := "", false
	for _, f := range files {
		if ok, _ := doublestar.Match(infoPattern, f.Name); !ok {
			continue
		}
		dir := path.Dir(f.Name)
		if dir == "." {
			return "", true
		}
		if !found || len(dir) < len(best) {
			best, found = dir+"/", true
		}
	}
	return best, found
}

func (s *zipSource) ReadFile(name string) ([]byte, error) {
	f, ok := s.files[path.Clean(name)]
	if !ok {
		return nil, fs.ErrNotExist
	}
	r, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func (s *zipSource) Close() error {
	return s.rc.Close()
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
