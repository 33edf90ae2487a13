package tui

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	tea "charm.land/bubbletea/v2"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// fileItem is a file or directory in the upload picker.
type fileItem struct {
	name  string
	path  string
	isDir bool
}

// uploadStep lets the user browse to a local photo. Selection fires
// fileSelectedMsg; the wizard advances immediately while the upload task
// runs in the background.
type uploadStep struct {
	currentPath string
	items       []fileItem
	selectedIdx int
	width       int
	height      int
}

func newUploadStep() *uploadStep {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	u := &uploadStep{currentPath: cwd, width: 60, height: 12}
	_ = u.loadDirectory(cwd)
	return u
}

// loadDirectory lists directories plus image files, directories first.
func (u *uploadStep) loadDirectory(path string) error {
	entries, err := os.ReadDir(path)
	if err != nil {
		return err
	}

	u.items = u.items[:0]

	absPath, err := filepath.Abs(path)
	if err == nil && absPath != filepath.Dir(absPath) {
		u.items = append(u.items, fileItem{name: "..", path: filepath.Dir(absPath), isDir: true})
	}

	var dirs, files []fileItem
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		fullPath := filepath.Join(path, entry.Name())
		if entry.IsDir() {
			dirs = append(dirs, fileItem{name: entry.Name(), path: fullPath, isDir: true})
		} else if imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			files = append(files, fileItem{name: entry.Name(), path: fullPath})
		}
	}
	sort.Slice(dirs, func(i, j int) bool {
		return strings.ToLower(dirs[i].name) < strings.ToLower(dirs[j].name)
	})
	sort.Slice(files, func(i, j int) bool {
		return strings.ToLower(files[i].name) < strings.ToLower(files[j].name)
	})

	u.items = append(u.items, dirs...)
	u.items = append(u.items, files...)
	u.currentPath = path
	u.selectedIdx = 0
	return nil
}

func (u *uploadStep) SetSize(width, height int) {
	u.width = width
	u.height = height
}

func (u *uploadStep) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return nil
	}
	switch keyMsg.String() {
	case "up", "k":
		if u.selectedIdx > 0 {
			u.selectedIdx--
		}
	case "down", "j":
		if u.selectedIdx < len(u.items)-1 {
			u.selectedIdx++
		}
	case "enter":
		if u.selectedIdx < 0 || u.selectedIdx >= len(u.items) {
			return nil
		}
		item := u.items[u.selectedIdx]
		if item.isDir {
			_ = u.loadDirectory(item.path)
			return nil
		}
		return func() tea.Msg { return fileSelectedMsg{path: item.path} }
	case "backspace":
		if parent := filepath.Dir(u.currentPath); parent != u.currentPath {
			_ = u.loadDirectory(parent)
		}
	}
	return nil
}

func (u *uploadStep) View(s styles) string {
	var b strings.Builder

	b.WriteString(s.title.Render("Pick a photo of your floor"))
	b.WriteString("\n")
	b.WriteString(s.subtle.Render(u.currentPath))
	b.WriteString("\n\n")

	if len(u.items) == 0 {
		b.WriteString(s.muted.Render("Directory is empty"))
		b.WriteString("\n")
	}

	// Windowed listing around the selection. Header, path, and hint bar
	// take the rest of the height.
	visible := u.height - 8
	if visible < 3 {
		visible = 3
	}
	start := 0
	if u.selectedIdx >= visible {
		start = u.selectedIdx - visible + 1
	}
	for i := start; i < len(u.items) && i < start+visible; i++ {
		item := u.items[i]
		icon := "🖼"
		if item.isDir {
			icon = "📁"
		}
		line := icon + " " + item.name
		if runes := []rune(line); len(runes) > u.width-2 && u.width > 5 {
			line = string(runes[:u.width-5]) + "..."
		}
		if i == u.selectedIdx {
			line = s.selected.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(renderHintBar(s, "↑↓", "navigate", "enter", "select", "backspace", "up a level", "q", "quit"))
	return b.String()
}
