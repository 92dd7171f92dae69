package testutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"
)

const maxLinkHops = 40

// MemoryFS implements types.FS with in-memory storage. Stat and ReadFile
// follow symlinks; Lstat, Readlink and Remove act on the link itself.
// Symlinks in intermediate path components are not followed.
type MemoryFS struct {
	mu    sync.RWMutex
	files map[string]*fileNode
	umask os.FileMode

	// Error injection, keyed by op then cleaned path. Op "*" matches any op.
	failures map[string]map[string]error
}

type fileNode struct {
	name     string
	mode     os.FileMode
	modTime  time.Time
	content  []byte
	isDir    bool
	isLink   bool
	linkDest string
	children map[string]*fileNode
}

// NewMemoryFS creates a new in-memory filesystem
func NewMemoryFS() *MemoryFS {
	root := &fileNode{
		name:     "/",
		mode:     0755 | os.ModeDir,
		modTime:  time.Now(),
		isDir:    true,
		children: make(map[string]*fileNode),
	}

	return &MemoryFS{
		files:    map[string]*fileNode{"/": root},
		umask:    0022,
		failures: make(map[string]map[string]error),
	}
}

func normalizePath(path string) string {
	if !filepath.IsAbs(path) {
		path = filepath.Join("/", path)
	}
	return filepath.Clean(path)
}

func (m *MemoryFS) injected(op, path string) error {
	if err, ok := m.failures[op][path]; ok {
		return &fs.PathError{Op: op, Path: path, Err: err}
	}
	if err, ok := m.failures["*"][path]; ok {
		return &fs.PathError{Op: op, Path: path, Err: err}
	}
	return nil
}

// lookup returns the node at path without following a final symlink.
func (m *MemoryFS) lookup(op, path string) (*fileNode, error) {
	if err := m.injected(op, path); err != nil {
		return nil, err
	}
	node, ok := m.files[path]
	if !ok {
		return nil, &fs.PathError{Op: op, Path: path, Err: m.missing(path)}
	}
	return node, nil
}

// missing reports why path does not exist: ENOTDIR when an ancestor is a
// regular file, as the OS does.
func (m *MemoryFS) missing(path string) error {
	for dir := filepath.Dir(path); dir != "/" && dir != "."; dir = filepath.Dir(dir) {
		if node, ok := m.files[dir]; ok {
			if !node.isDir && !node.isLink {
				return syscall.ENOTDIR
			}
			break
		}
	}
	return fs.ErrNotExist
}

// resolve follows symlinks until a non-link node is reached.
func (m *MemoryFS) resolve(op, path string) (*fileNode, string, error) {
	for hops := 0; hops < maxLinkHops; hops++ {
		node, err := m.lookup(op, path)
		if err != nil {
			return nil, path, err
		}
		if !node.isLink {
			return node, path, nil
		}
		target := node.linkDest
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(path), target)
		}
		path = filepath.Clean(target)
	}
	return nil, path, &fs.PathError{Op: op, Path: path, Err: errors.New("too many levels of symbolic links")}
}

func (m *MemoryFS) parentOf(op, path string) (*fileNode, string, error) {
	dir, name := filepath.Dir(path), filepath.Base(path)
	parent, ok := m.files[dir]
	if !ok {
		return nil, "", &fs.PathError{Op: op, Path: path, Err: fs.ErrNotExist}
	}
	if !parent.isDir {
		return nil, "", &fs.PathError{Op: op, Path: path, Err: errors.New("not a directory")}
	}
	return parent, name, nil
}

// ReadFile reads the entire file content, following symlinks
func (m *MemoryFS) ReadFile(name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	node, _, err := m.resolve("read", normalizePath(name))
	if err != nil {
		return nil, err
	}
	if node.isDir {
		return nil, &fs.PathError{Op: "read", Path: name, Err: errors.New("is a directory")}
	}

	content := make([]byte, len(node.content))
	copy(content, node.content)
	return content, nil
}

// WriteFile writes data to a file, creating parent directories as needed
func (m *MemoryFS) WriteFile(name string, data []byte, perm os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	path := normalizePath(name)
	if err := m.injected("write", path); err != nil {
		return err
	}
	if existing, ok := m.files[path]; ok && existing.isDir {
		return &fs.PathError{Op: "write", Path: path, Err: errors.New("is a directory")}
	}
	if err := m.mkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	parent, filename, err := m.parentOf("write", path)
	if err != nil {
		return err
	}

	node := &fileNode{
		name:    filename,
		mode:    perm &^ m.umask,
		modTime: time.Now(),
		content: append([]byte(nil), data...),
	}
	parent.children[filename] = node
	m.files[path] = node
	return nil
}

// Stat returns file info, following symlinks
func (m *MemoryFS) Stat(name string) (os.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	path := normalizePath(name)
	node, _, err := m.resolve("stat", path)
	if err != nil {
		return nil, err
	}
	return &fileInfo{node: node, name: filepath.Base(path)}, nil
}

// Lstat returns file info without following a final symlink
func (m *MemoryFS) Lstat(name string) (os.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	path := normalizePath(name)
	node, err := m.lookup("lstat", path)
	if err != nil {
		return nil, err
	}
	return &fileInfo{node: node, name: filepath.Base(path)}, nil
}

// Remove removes a file, a symlink or an empty directory
func (m *MemoryFS) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	path := normalizePath(name)
	node, err := m.lookup("remove", path)
	if err != nil {
		return err
	}
	if node.isDir && len(node.children) > 0 {
		return &fs.PathError{Op: "remove", Path: path, Err: errors.New("directory not empty")}
	}
	if path == "/" {
		return &fs.PathError{Op: "remove", Path: path, Err: fs.ErrPermission}
	}

	parent, filename, err := m.parentOf("remove", path)
	if err != nil {
		return err
	}
	delete(parent.children, filename)
	delete(m.files, path)
	return nil
}

// RemoveAll removes a path and everything below it
func (m *MemoryFS) RemoveAll(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	path := normalizePath(name)
	if err := m.injected("removeall", path); err != nil {
		return err
	}

	for p := range m.files {
		if p == "/" || (p != path && !strings.HasPrefix(p, path+"/")) {
			continue
		}
		delete(m.files, p)
		if parent, ok := m.files[filepath.Dir(p)]; ok && parent.isDir {
			delete(parent.children, filepath.Base(p))
		}
	}
	return nil
}

// MkdirAll creates a directory and all necessary parents
func (m *MemoryFS) MkdirAll(path string, perm os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.mkdirAll(normalizePath(path), perm)
}

func (m *MemoryFS) mkdirAll(path string, perm os.FileMode) error {
	if err := m.injected("mkdir", path); err != nil {
		return err
	}
	if node, ok := m.files[path]; ok {
		if !node.isDir {
			return &fs.PathError{Op: "mkdir", Path: path, Err: errors.New("not a directory")}
		}
		return nil
	}

	current := "/"
	currentNode := m.files["/"]
	for _, part := range strings.Split(path, "/") {
		if part == "" {
			continue
		}
		next := filepath.Join(current, part)

		if child, exists := currentNode.children[part]; exists {
			if !child.isDir {
				return &fs.PathError{Op: "mkdir", Path: next, Err: errors.New("not a directory")}
			}
			currentNode, current = child, next
			continue
		}

		if err := m.injected("mkdir", next); err != nil {
			return err
		}
		dir := &fileNode{
			name:     part,
			mode:     perm | os.ModeDir,
			modTime:  time.Now(),
			isDir:    true,
			children: make(map[string]*fileNode),
		}
		currentNode.children[part] = dir
		m.files[next] = dir
		currentNode, current = dir, next
	}
	return nil
}

// Readlink returns the destination of a symbolic link
func (m *MemoryFS) Readlink(name string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	path := normalizePath(name)
	node, err := m.lookup("readlink", path)
	if err != nil {
		return "", err
	}
	if !node.isLink {
		return "", &fs.PathError{Op: "readlink", Path: path, Err: errors.New("invalid argument")}
	}
	return node.linkDest, nil
}

// Symlink creates link pointing at target. The parent directory must exist.
func (m *MemoryFS) Symlink(target, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	linkPath := normalizePath(link)
	if err := m.injected("symlink", linkPath); err != nil {
		return err
	}
	if _, ok := m.files[linkPath]; ok {
		return &fs.PathError{Op: "symlink", Path: linkPath, Err: fs.ErrExist}
	}

	parent, filename, err := m.parentOf("symlink", linkPath)
	if err != nil {
		return err
	}

	node := &fileNode{
		name:     filename,
		mode:     0777 | os.ModeSymlink,
		modTime:  time.Now(),
		isLink:   true,
		linkDest: target,
	}
	parent.children[filename] = node
	m.files[linkPath] = node
	return nil
}

// FailOn makes op on path fail with err. Ops are "stat", "lstat", "read",
// "write", "mkdir", "symlink", "readlink", "remove", "removeall" or "*".
func (m *MemoryFS) FailOn(op, path string, err error) *MemoryFS {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failures[op] == nil {
		m.failures[op] = make(map[string]error)
	}
	m.failures[op][normalizePath(path)] = err
	return m
}

// WithError makes every operation on path fail with err
func (m *MemoryFS) WithError(path string, err error) *MemoryFS {
	return m.FailOn("*", path, err)
}

// ClearFailures removes all injected errors
func (m *MemoryFS) ClearFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = make(map[string]map[string]error)
}

// Paths lists every path in the filesystem, sorted, for assertions
func (m *MemoryFS) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.files))
	for p := range m.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// fileInfo implements os.FileInfo
type fileInfo struct {
	node *fileNode
	name string
}

func (fi *fileInfo) Name() string       { return fi.name }
func (fi *fileInfo) Size() int64        { return int64(len(fi.node.content)) }
func (fi *fileInfo) Mode() os.FileMode  { return fi.node.mode }
func (fi *fileInfo) ModTime() time.Time { return fi.node.modTime }
func (fi *fileInfo) IsDir() bool        { return fi.node.isDir }
func (fi *fileInfo) Sys() interface{}   { return nil }
