package interrogation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Library resolves prompt templates by name. Compiled-in defaults are
// always present; a prompt directory may override any of them with
// <name>.tmpl files. While the watcher runs, overrides reload on change
// and deleting an override restores the builtin text.
type Library struct {
	mu     sync.RWMutex
	tmpl   map[string]*template.Template
	dir    string
	logger zerolog.Logger

	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewLibrary compiles the builtin templates and applies any overrides
// found in dir. A missing or empty dir means builtins only.
func NewLibrary(dir string, logger zerolog.Logger) (*Library, error) {
	l := &Library{
		tmpl:   make(map[string]*template.Template, 12),
		dir:    dir,
		logger: logger,
	}
	for name, text := range defaultPromptTexts() {
		t, err := template.New(name).Parse(text)
		if err != nil {
			return nil, fmt.Errorf("parse builtin prompt %s: %w", name, err)
		}
		l.tmpl[name] = t
	}
	if dir != "" {
		l.loadOverrides()
	}
	return l, nil
}

// Render executes the named template against data.
func (l *Library) Render(name string, data PromptData) (string, error) {
	l.mu.RLock()
	t, ok := l.tmpl[name]
	l.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("unknown prompt template %q", name)
	}
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}
	return sb.String(), nil
}

// RenderPair renders a stage's system and user templates together.
func (l *Library) RenderPair(systemName, userName string, data PromptData) (system, user string, err error) {
	system, err = l.Render(systemName, data)
	if err != nil {
		return "", "", err
	}
	user, err = l.Render(userName, data)
	if err != nil {
		return "", "", err
	}
	return system, user, nil
}

// Watch begins reloading overrides on filesystem changes. Non-blocking;
// call Close to stop. Watching a missing directory is not an error, the
// builtin templates simply stay in effect.
func (l *Library) Watch() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running || l.dir == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(l.dir); err != nil {
		watcher.Close()
		l.logger.Warn().Err(err).Str("dir", l.dir).Msg("prompt dir not watchable, using builtin templates")
		return nil
	}

	l.watcher = watcher
	l.stopCh = make(chan struct{})
	l.doneCh = make(chan struct{})
	l.running = true
	go l.run()
	return nil
}

// Close stops the watcher, if running.
func (l *Library) Close() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	l.running = false
	l.mu.Unlock()

	close(l.stopCh)
	<-l.doneCh
	l.watcher.Close()
}

func (l *Library) run() {
	defer close(l.doneCh)
	for {
		select {
		case <-l.stopCh:
			return
		case event, ok := <-l.watcher.Events:
			if !ok {
				return
			}
			l.handleEvent(event)
		case err, ok := <-l.watcher.Errors:
			if !ok {
				return
			}
			l.logger.Warn().Err(err).Msg("prompt watcher error")
		}
	}
}

func (l *Library) handleEvent(event fsnotify.Event) {
	if !strings.HasSuffix(event.Name, ".tmpl") {
		return
	}
	switch {
	case event.Op&(fsnotify.Write|fsnotify.Create) != 0:
		l.loadFile(event.Name)
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		l.restoreDefault(templateStem(event.Name))
	}
}

func (l *Library) loadOverrides() {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".tmpl") {
			continue
		}
		l.loadFile(filepath.Join(l.dir, entry.Name()))
	}
}

// loadFile parses one override and swaps it in. A bad override keeps the
// previously active template so a half-saved edit never breaks a run.
func (l *Library) loadFile(path string) {
	name := templateStem(path)
	if _, known := defaultPromptTexts()[name]; !known {
		l.logger.Warn().Str("file", path).Msg("ignoring unknown prompt override")
		return
	}
	content, err := os.ReadFile(path)
	if err != nil {
		l.logger.Warn().Err(err).Str("file", path).Msg("cannot read prompt override")
		return
	}
	t, err := template.New(name).Parse(string(content))
	if err != nil {
		l.logger.Warn().Err(err).Str("file", path).Msg("prompt override does not parse, keeping active template")
		return
	}
	l.mu.Lock()
	l.tmpl[name] = t
	l.mu.Unlock()
	l.logger.Debug().Str("prompt", name).Msg("prompt override loaded")
}

func (l *Library) restoreDefault(name string) {
	text, known := defaultPromptTexts()[name]
	if !known {
		return
	}
	t, err := template.New(name).Parse(text)
	if err != nil {
		return
	}
	l.mu.Lock()
	l.tmpl[name] = t
	l.mu.Unlock()
	l.logger.Debug().Str("prompt", name).Msg("prompt override removed, builtin restored")
}

func templateStem(path string) string {
	return strings.TrimSuffix(filepath.Base(path), ".tmpl")
}
