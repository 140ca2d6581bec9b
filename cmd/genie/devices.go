package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Vovarama1992/speak_genie/internal/conversation"
)

// cliRecorder пишет с микрофона внешней командой или отдаёт заранее выбранный файл.
type cliRecorder struct {
	command []string

	mu       sync.Mutex
	nextFile string
}

func newCLIRecorder(command string) *cliRecorder {
	return &cliRecorder{command: strings.Fields(command)}
}

// UseFile makes the next Record return the file instead of the microphone.
func (r *cliRecorder) UseFile(path string) {
	r.mu.Lock()
	r.nextFile = path
	r.mu.Unlock()
}

func (r *cliRecorder) Record(ctx context.Context) (conversation.Recording, error) {
	r.mu.Lock()
	file := r.nextFile
	r.nextFile = ""
	r.mu.Unlock()

	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return conversation.Recording{}, err
		}
		return conversation.Recording{Data: data, Filename: filepath.Base(file)}, nil
	}

	if len(r.command) == 0 {
		return conversation.Recording{}, fmt.Errorf("no recorder configured (set GENIE_RECORDER or pass a file)")
	}

	// процесс убивается по дедлайну контекста, берём то, что успело записаться
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, r.command[0], r.command[1:]...)
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil && ctx.Err() == nil {
		return conversation.Recording{}, fmt.Errorf("recorder: %w", err)
	}
	if out.Len() == 0 {
		return conversation.Recording{}, fmt.Errorf("recorder produced no audio")
	}
	return conversation.Recording{Data: out.Bytes(), Filename: "input.webm"}, nil
}

// filePlayer сохраняет mp3 в папку и, если задано, запускает внешний плеер.
type filePlayer struct {
	dir     string
	command []string
}

func newFilePlayer(dir, command string) (*filePlayer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &filePlayer{dir: dir, command: strings.Fields(command)}, nil
}

// Load пишет mp3 на диск, путь к файлу становится handle.
func (p *filePlayer) Load(a *conversation.AudioArtifact) (string, error) {
	path := filepath.Join(p.dir, "reply-"+a.ID+".mp3")
	if err := os.WriteFile(path, a.Data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (p *filePlayer) Play(ctx context.Context, a *conversation.AudioArtifact) error {
	if len(p.command) == 0 {
		return nil
	}
	args := append(append([]string{}, p.command[1:]...), a.Handle)
	return exec.CommandContext(ctx, p.command[0], args...).Run()
}

func (p *filePlayer) Release(a *conversation.AudioArtifact) {
	if a.Handle == "" {
		return
	}
	_ = os.Remove(a.Handle)
}
