// Package workspace derives the project name the tracker attributes time to
// from the editor host's workspace description.
package workspace

import (
	"path/filepath"
	"strings"
)

const (
	UnknownProject   = "Unknown Project"
	NoActiveFile     = "No Active File"
	DefaultWorkspace = "Default Workspace"
	externalPrefix   = "External/"
	virtualFiles     = "Virtual Files"
	otherFiles       = "Other"
)

// Folder is one workspace root.
type Folder struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// File is the document in the active editor.
type File struct {
	Scheme string `json:"scheme"`
	Path   string `json:"path"`
}

// Context is the workspace snapshot sent along with every host message.
type Context struct {
	Name       string   `json:"name"`
	Folders    []Folder `json:"folders"`
	ActiveFile *File    `json:"active_file,omitempty"`
}

// Resolve returns the project name and the directory used for branch
// lookups. dir is empty when there is nothing on disk to ask git about.
func Resolve(c Context) (project, dir string) {
	if len(c.Folders) == 0 {
		return UnknownProject, ""
	}
	if c.ActiveFile == nil {
		return NoActiveFile, ""
	}

	folder, ok := containing(c.Folders, c.ActiveFile)
	if !ok {
		return external(c.ActiveFile)
	}
	if len(c.Folders) > 1 {
		name := c.Name
		if name == "" {
			name = DefaultWorkspace
		}
		return name + "/" + folderName(folder), folder.Path
	}
	return folderName(folder), folder.Path
}

// containing returns the innermost folder holding f.
func containing(folders []Folder, f *File) (Folder, bool) {
	if !isFile(f) {
		return Folder{}, false
	}
	file := filepath.Clean(f.Path)
	var best Folder
	found := false
	for _, folder := range folders {
		root := filepath.Clean(folder.Path)
		if file != root && !strings.HasPrefix(file, root+string(filepath.Separator)) {
			continue
		}
		if !found || len(root) > len(filepath.Clean(best.Path)) {
			best, found = folder, true
		}
	}
	return best, found
}

func external(f *File) (string, string) {
	if !isFile(f) {
		return externalPrefix + virtualFiles, ""
	}
	dir := filepath.Dir(filepath.Clean(f.Path))
	var parts []string
	for _, p := range strings.Split(filepath.ToSlash(dir), "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) < 2 {
		return externalPrefix + otherFiles, dir
	}
	return externalPrefix + parts[len(parts)-2] + "/" + parts[len(parts)-1], dir
}

func isFile(f *File) bool {
	return f.Scheme == "" || f.Scheme == "file"
}

func folderName(f Folder) string {
	if f.Name != "" {
		return f.Name
	}
	return filepath.Base(filepath.Clean(f.Path))
}
