package repository

import (
	"errors"
	"github.com/DenisKhanov/GramGPT/internal/gram_gpt/models"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
)

func textTurn(t *testing.T, role models.Role, text string) models.Turn {
	t.Helper()
	turn, err := models.NewTurn(role, models.NewTextPart(text))
	if err != nil {
		t.Fatal(err)
	}
	return turn
}

func TestConversationStore_AppendLen(t *testing.T) {
	s := NewConversationStore()
	for i := 0; i < 7; i++ {
		if err := s.Append(textTurn(t, models.RoleUser, strconv.Itoa(i))); err != nil {
			t.Fatalf("Append returned error: %v", err)
		}
	}
	if s.Len() != 7 {
		t.Errorf("Expected 7 turns, got %d", s.Len())
	}

	i := 0
	for turn := range s.Turns() {
		if turn.PlainText() != strconv.Itoa(i) {
			t.Errorf("Turn %d out of order: %q", i, turn.PlainText())
		}
		i++
	}

	s.Clear()
	if s.Len() != 0 {
		t.Errorf("Expected empty store after Clear, got %d", s.Len())
	}
}

func TestConversationStore_RejectsEmptyTurn(t *testing.T) {
	s := NewConversationStore()
	good := textTurn(t, models.RoleUser, "ok")

	err := s.AppendAll(good, models.Turn{Role: models.RoleModel})
	if !errors.Is(err, models.ErrInvalidRequest) {
		t.Fatalf("Expected ErrInvalidRequest, got %v", err)
	}
	if s.Len() != 0 {
		t.Error("A rejected batch must not be partially stored")
	}
}

func TestConversationStore_TurnsIsSnapshot(t *testing.T) {
	s := NewConversationStore()
	_ = s.Append(textTurn(t, models.RoleUser, "a"))
	_ = s.Append(textTurn(t, models.RoleModel, "b"))

	seen := 0
	for range s.Turns() {
		_ = s.Append(textTurn(t, models.RoleUser, "during"))
		seen++
	}
	if seen != 2 {
		t.Errorf("Expected the iteration to see 2 turns, saw %d", seen)
	}

	// Повторный обход видит новые записи
	seen = 0
	for range s.Turns() {
		seen++
	}
	if seen != 4 {
		t.Errorf("Expected restarted iteration to see 4 turns, saw %d", seen)
	}
}

func TestConversationStore_Exchanges(t *testing.T) {
	s := NewConversationStore()
	_ = s.AppendAll(textTurn(t, models.RoleUser, "q1"), textTurn(t, models.RoleModel, "a1"))
	_ = s.AppendAll(textTurn(t, models.RoleUser, "q2"), textTurn(t, models.RoleModel, "a2"))

	ex := s.Exchanges()
	if len(ex) != 2 {
		t.Fatalf("Expected 2 exchanges, got %d", len(ex))
	}
	if ex[1].Index != 2 || ex[1].Prompt.PlainText() != "q2" || ex[1].Answer.PlainText() != "a2" {
		t.Errorf("Unexpected exchange %+v", ex[1])
	}
}

func TestSessions_Isolation(t *testing.T) {
	s := NewSessions()
	q, a := textTurn(t, models.RoleUser, "q"), textTurn(t, models.RoleModel, "a")
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := strconv.Itoa(i % 2)
			_ = s.AppendTurns(key, q, a)
		}(i)
	}
	wg.Wait()

	if got := len(s.History("0")); got != 10 {
		t.Errorf("Expected 10 turns for session 0, got %d", got)
	}
	if got := len(s.Exchanges("1")); got != 5 {
		t.Errorf("Expected 5 exchanges for session 1, got %d", got)
	}

	s.ClearHistory("0")
	if got := len(s.History("0")); got != 0 {
		t.Errorf("Expected cleared history, got %d turns", got)
	}
	if got := len(s.History("1")); got != 10 {
		t.Errorf("Clearing one session must not touch another, got %d", got)
	}
}

func TestPreferences_PersistAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")

	p := NewPreferences(path, models.ThemeLight)
	if err := p.Load(); err != nil {
		t.Fatalf("Load of missing file returned error: %v", err)
	}
	if p.Theme() != models.ThemeLight {
		t.Errorf("Expected fallback theme light, got %s", p.Theme())
	}

	theme, err := p.Toggle()
	if err != nil || theme != models.ThemeDark {
		t.Fatalf("Toggle = %s, %v", theme, err)
	}

	reloaded := NewPreferences(path, models.ThemeLight)
	if err = reloaded.Load(); err != nil {
		t.Fatal(err)
	}
	if reloaded.Theme() != models.ThemeDark {
		t.Errorf("Expected persisted theme dark, got %s", reloaded.Theme())
	}

	if err = reloaded.SetTheme("blue"); !errors.Is(err, models.ErrInvalidRequest) {
		t.Errorf("Expected ErrInvalidRequest for unknown theme, got %v", err)
	}
}

func TestPreferences_InvalidFileKeepsFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	if err := os.WriteFile(path, []byte(`{"theme":"purple"}`), 0644); err != nil {
		t.Fatal(err)
	}

	p := NewPreferences(path, models.ThemeDark)
	if err := p.Load(); err == nil {
		t.Error("Expected error for invalid stored theme")
	}
	if p.Theme() != models.ThemeDark {
		t.Errorf("Expected fallback theme dark, got %s", p.Theme())
	}
}
