package core

import (
	"net/mail"
	"strings"
	"testing"
)

type noopLogger struct{}

func (noopLogger) Debug(msg string, args ...interface{}) {}
func (noopLogger) Info(msg string, args ...interface{})  {}
func (noopLogger) Warn(msg string, args ...interface{})  {}
func (noopLogger) Error(msg string, args ...interface{}) {}
func (noopLogger) Fatal(msg string, args ...interface{}) {}

func testConfig(t *testing.T) *Config {
	t.Helper()
	conf := NewConfig()
	conf.Debug = false
	conf.TestMode = true
	return conf
}

func TestParseEmailTemplates_LoadsShippedTemplates(t *testing.T) {
	conf := testConfig(t)
	ParseEmailTemplates(conf, noopLogger{})

	names := []string{"meeting-reminder", "contest-reminder", "collection-summary"}
	for _, name := range names {
		entry, ok := templates[name]
		if !ok {
			t.Errorf("template %q not loaded", name)
			continue
		}
		for _, ext := range []string{".txt", ".gohtml"} {
			if _, ok := entry[ext]; !ok {
				t.Errorf("template %q missing %s variant", name, ext)
			}
		}
	}
	if _, ok := templates["_base"]; ok {
		t.Error("base layouts must not be loaded as standalone templates")
	}
}

func TestEmailMessage_RenderTemplated(t *testing.T) {
	conf := testConfig(t)
	ParseEmailTemplates(conf, noopLogger{})

	msg := EmailMessage{
		To:           []mail.Address{{Name: "Jane", Address: "jane@club.cd"}},
		Subject:      "Contest starting soon: Weekly Contest 375",
		TemplateName: "contest-reminder",
		TemplateData: struct {
			Name     string
			Platform string
			StartAt  string
		}{"Weekly Contest 375", "leetcode", "Sun, 07 Jan 2024 02:30:00 UTC"},
	}
	if err := msg.Render(conf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !msg.HasContent() {
		t.Fatal("Render() produced no content")
	}
	for _, want := range []string{"Weekly Contest 375", "leetcode", conf.FrontendBaseURL} {
		if !strings.Contains(msg.TextContent, want) {
			t.Errorf("TextContent missing %q:\n%s", want, msg.TextContent)
		}
		if !strings.Contains(msg.HTMLContent, want) {
			t.Errorf("HTMLContent missing %q:\n%s", want, msg.HTMLContent)
		}
	}
}

func TestEmailMessage_BodyStrTakesPrecedence(t *testing.T) {
	conf := testConfig(t)
	ParseEmailTemplates(conf, noopLogger{})

	msg := EmailMessage{
		To:      []mail.Address{{Address: "jane@club.cd"}},
		Subject: "Welcome",
		BodyStr: "plain content",
	}
	if err := msg.Render(conf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if msg.TextContent != "plain content" {
		t.Errorf("TextContent = %q; want BodyStr verbatim", msg.TextContent)
	}
	if msg.HTMLContent != "" {
		t.Errorf("HTMLContent = %q; want empty for non-templated messages", msg.HTMLContent)
	}
}

func TestEmailMessage_UnknownTemplateIsNotFatal(t *testing.T) {
	conf := testConfig(t)
	ParseEmailTemplates(conf, noopLogger{})

	msg := EmailMessage{
		To:           []mail.Address{{Address: "jane@club.cd"}},
		Subject:      "Hello",
		TemplateName: "no-such-template",
	}
	if err := msg.Render(conf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if msg.HasContent() {
		t.Errorf("unknown template produced content: %q / %q", msg.TextContent, msg.HTMLContent)
	}
}
