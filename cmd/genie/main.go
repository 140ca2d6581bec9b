// Command genie is a terminal client for the SpeakGenie relay server.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"

	"github.com/Vovarama1992/speak_genie/internal/conversation"
	"github.com/Vovarama1992/speak_genie/internal/domain"
	"github.com/Vovarama1992/speak_genie/internal/relayclient"
	"github.com/Vovarama1992/speak_genie/internal/scenario"
)

func main() {
	_ = godotenv.Load()

	server := flag.String("server", envOr("GENIE_SERVER_URL", "http://localhost:5000"), "relay server URL")
	audioDir := flag.String("audio-dir", envOr("GENIE_AUDIO_DIR", os.TempDir()), "where synthesized replies are written")
	budget := flag.Int("token-budget", 3000, "max prompt tokens sent to the completion relay")
	timeout := flag.Duration("timeout", 90*time.Second, "per-request timeout towards the relay")
	flag.Parse()

	log.SetOutput(os.Stderr)
	log.SetFlags(0)

	counter, err := conversation.NewTiktokenCounter()
	if err != nil {
		log.Printf("[genie] tokenizer unavailable, using estimate: %v", err)
		counter = conversation.ApproxTokens
	}

	player, err := newFilePlayer(*audioDir, os.Getenv("GENIE_PLAYER"))
	if err != nil {
		log.Fatalf("audio dir: %v", err)
	}
	recorder := newCLIRecorder(os.Getenv("GENIE_RECORDER"))
	scenarios := scenario.NewService()

	ui := &terminal{out: os.Stdout}
	sess := conversation.NewSession(
		relayclient.NewClient(*server, *timeout),
		scenarios,
		conversation.WithRecorder(recorder),
		conversation.WithPlayer(player),
		conversation.WithHistoryFitter(&conversation.HistoryFitter{Budget: *budget, Count: counter}),
		conversation.WithObserver(ui.render),
	)

	// Ctrl-C отменяет текущий ход, а не весь процесс
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	go func() {
		for range interrupts {
			sess.Cancel()
		}
	}()

	fmt.Println("🧞 SpeakGenie — type a message, or /help")
	ctx := context.Background()
	in := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !in.Scan() {
			return
		}
		line := strings.TrimSpace(in.Text())

		var err error
		switch {
		case line == "":
			continue
		case line == "/quit":
			return
		case line == "/help":
			printHelp()
		case line == "/scenarios":
			for _, sc := range scenarios.List() {
				fmt.Printf("  %-7s %s\n", sc.Key, sc.Title)
			}
		case line == "/personas":
			for i, p := range scenario.Personas {
				fmt.Printf("  %d. %s\n", i+1, p)
			}
		case strings.HasPrefix(line, "/scenario "):
			err = sess.SelectScenario(ctx, strings.TrimSpace(strings.TrimPrefix(line, "/scenario ")))
		case strings.HasPrefix(line, "/persona "):
			err = selectPersona(sess, strings.TrimSpace(strings.TrimPrefix(line, "/persona ")))
		case line == "/voice" || strings.HasPrefix(line, "/voice "):
			if file := strings.TrimSpace(strings.TrimPrefix(line, "/voice")); file != "" {
				recorder.UseFile(file)
			}
			err = sess.SubmitVoice(ctx)
		default:
			err = sess.SubmitText(ctx, line)
		}

		if err != nil && !errors.Is(err, conversation.ErrEmptyInput) {
			log.Printf("[genie] %v", err)
		}
	}
}

func selectPersona(sess *conversation.Session, arg string) error {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(scenario.Personas) {
		return fmt.Errorf("persona must be 1..%d", len(scenario.Personas))
	}
	sess.SelectPersona(scenario.Personas[n-1])
	fmt.Printf("persona: %s\n", scenario.Personas[n-1])
	return nil
}

func printHelp() {
	fmt.Println(`  <text>              send a message
  /voice [file]       speak (records for 4s via GENIE_RECORDER, or sends file)
  /scenarios          list scenarios
  /scenario <key>     switch scenario
  /personas           list personas
  /persona <n>        pick persona for free chat
  /quit`)
}

// terminal печатает только изменения: новые реплики, статус и аудио.
// Смена сценария или сброс истории начинает вывод заново.
type terminal struct {
	out       io.Writer
	scenario  string
	shown     int
	status    string
	lastAudio string
}

func (t *terminal) render(s conversation.Snapshot) {
	if s.Scenario.Key != t.scenario || len(s.Transcript) < t.shown {
		t.scenario = s.Scenario.Key
		t.shown = 0
		fmt.Fprintf(t.out, "— %s —\n", s.Scenario.Title)
	}
	for _, m := range s.Transcript[t.shown:] {
		who := "You"
		if m.Role == domain.RoleAssistant {
			who = "Genie"
		}
		fmt.Fprintf(t.out, "%s: %s\n", who, m.Content)
	}
	t.shown = len(s.Transcript)

	if s.Status != t.status {
		t.status = s.Status
		if s.Status != "" {
			fmt.Fprintf(t.out, "  %s\n", s.Status)
		}
	}

	if s.Audio != nil && s.Audio.Handle != "" && s.Audio.Handle != t.lastAudio {
		t.lastAudio = s.Audio.Handle
		fmt.Fprintf(t.out, "  🔊 %s (%s)\n", s.Audio.Handle, humanize.Bytes(uint64(len(s.Audio.Data))))
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
