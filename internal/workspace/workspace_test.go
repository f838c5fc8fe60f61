package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	single := []Folder{{Name: "api", Path: "/home/dev/src/api"}}
	multi := []Folder{
		{Name: "api", Path: "/home/dev/src/api"},
		{Name: "web", Path: "/home/dev/src/web"},
	}

	tests := []struct {
		name        string
		ctx         Context
		wantProject string
		wantDir     string
	}{
		{
			name:        "no folders",
			ctx:         Context{ActiveFile: &File{Path: "/tmp/x.go"}},
			wantProject: UnknownProject,
		},
		{
			name:        "no active file",
			ctx:         Context{Folders: single},
			wantProject: NoActiveFile,
		},
		{
			name:        "single root",
			ctx:         Context{Folders: single, ActiveFile: &File{Scheme: "file", Path: "/home/dev/src/api/cmd/main.go"}},
			wantProject: "api",
			wantDir:     "/home/dev/src/api",
		},
		{
			name:        "multi root prefixes workspace name",
			ctx:         Context{Name: "platform", Folders: multi, ActiveFile: &File{Path: "/home/dev/src/web/index.ts"}},
			wantProject: "platform/web",
			wantDir:     "/home/dev/src/web",
		},
		{
			name:        "multi root without workspace name",
			ctx:         Context{Folders: multi, ActiveFile: &File{Path: "/home/dev/src/api/go.mod"}},
			wantProject: "Default Workspace/api",
			wantDir:     "/home/dev/src/api",
		},
		{
			name:        "sibling with shared prefix is external",
			ctx:         Context{Folders: single, ActiveFile: &File{Path: "/home/dev/src/api-docs/readme.md"}},
			wantProject: "External/src/api-docs",
			wantDir:     "/home/dev/src/api-docs",
		},
		{
			name:        "external file",
			ctx:         Context{Folders: single, ActiveFile: &File{Path: "/etc/nginx/nginx.conf"}},
			wantProject: "External/etc/nginx",
			wantDir:     "/etc/nginx",
		},
		{
			name:        "external files are grouped by directory",
			ctx:         Context{Folders: single, ActiveFile: &File{Path: "/home/u/notes/todo.md"}},
			wantProject: "External/u/notes",
			wantDir:     "/home/u/notes",
		},
		{
			name:        "external file near root",
			ctx:         Context{Folders: single, ActiveFile: &File{Path: "/notes.txt"}},
			wantProject: "External/Other",
			wantDir:     "/",
		},
		{
			name:        "virtual document",
			ctx:         Context{Folders: single, ActiveFile: &File{Scheme: "untitled", Path: "Untitled-1"}},
			wantProject: "External/Virtual Files",
		},
		{
			name:        "unnamed folder uses base name",
			ctx:         Context{Folders: []Folder{{Path: "/work/tool/"}}, ActiveFile: &File{Path: "/work/tool/a.go"}},
			wantProject: "tool",
			wantDir:     "/work/tool/",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			project, dir := Resolve(tt.ctx)
			assert.Equal(t, tt.wantProject, project)
			assert.Equal(t, tt.wantDir, dir)
		})
	}
}

func TestResolve_InnermostFolderWins(t *testing.T) {
	ctx := Context{
		Name: "mono",
		Folders: []Folder{
			{Name: "repo", Path: "/src/repo"},
			{Name: "svc", Path: "/src/repo/services/svc"},
		},
		ActiveFile: &File{Path: "/src/repo/services/svc/main.go"},
	}

	project, dir := Resolve(ctx)

	assert.Equal(t, "mono/svc", project)
	assert.Equal(t, "/src/repo/services/svc", dir)
}
