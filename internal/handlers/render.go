package handlers

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Kerhoff/GiftMind/internal/editing"
	"github.com/Kerhoff/GiftMind/internal/screens"
)

// TextCheckingSession is shown while the session of a chat is unresolved.
const TextCheckingSession = "⏳ Checking your session..."

func esc(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, s)
}

func bold(s string) string {
	return "*" + esc(s) + "*"
}

func italic(s string) string {
	return "_" + esc(s) + "_"
}

// Render returns the MarkdownV2 text of a screen. A nil screen means the
// session is still being checked.
func Render(s screens.Screen) string {
	switch v := s.(type) {
	case *screens.Login:
		return renderAuth("🔐 Sign in", v.Error(), "/login <email> <password>", "No account yet? /signup <email> <password>")
	case *screens.Signup:
		return renderAuth("📝 Create an account", v.Error(), "/signup <email> <password>", "Already registered? /login <email> <password>")
	case *screens.Dashboard:
		return renderDashboard(v)
	case *screens.AddRecipient:
		return renderAddRecipient(v)
	case *screens.RecipientDetail:
		return renderDetail(v)
	default:
		return esc(TextCheckingSession)
	}
}

func renderAuth(title, errMsg, usage, alt string) string {
	var sb strings.Builder
	sb.WriteString(bold(title) + "\n\n")
	if errMsg != "" {
		sb.WriteString("⚠️ " + esc(errMsg) + "\n\n")
	}
	sb.WriteString(esc(usage) + "\n")
	sb.WriteString(italic(alt))
	return sb.String()
}

func ideaCount(n int) string {
	if n == 1 {
		return "1 idea"
	}
	return fmt.Sprintf("%d ideas", n)
}

func renderDashboard(d *screens.Dashboard) string {
	var sb strings.Builder
	sb.WriteString(bold("🎁 Gift recipients") + "\n\n")

	rows := d.Rows()
	if len(rows) == 0 {
		sb.WriteString(esc(screens.TextNoRecipients) + "\n")
	}
	for _, row := range rows {
		line := fmt.Sprintf("%s %s · %s · %s",
			esc(fmt.Sprintf("#%d", row.ID)),
			bold(row.Name),
			esc(row.OccasionOr(screens.TextNotAvailable)),
			esc(ideaCount(row.IdeaCount)))
		if row.Busy {
			line += " ⏳"
		}
		sb.WriteString(line + "\n")
		if row.Mode == editing.Editing {
			sb.WriteString(esc(fmt.Sprintf("   ✏️ name: %q, occasion: %q · /save %d · /cancel %d",
				row.Draft.Name, row.Draft.Occasion, row.ID, row.ID)) + "\n")
		}
	}

	if notice := d.Notice(); notice != "" {
		sb.WriteString("\n⚠️ " + esc(notice) + "\n")
	}
	sb.WriteString("\n" + italic("Add New Recipient: /add <name> | <occasion>"))
	sb.WriteString("\n" + italic("View ideas: /open <id> · Edit: /edit <id> · Delete: /delete <id>"))
	return sb.String()
}

func renderAddRecipient(s *screens.AddRecipient) string {
	fields, errMsg := s.Form()
	var sb strings.Builder
	sb.WriteString(bold("➕ Add New Recipient") + "\n\n")
	if fields.Name != "" || fields.Occasion != "" {
		sb.WriteString(esc(fmt.Sprintf("Name: %s\nOccasion: %s", fields.Name, fields.Occasion)) + "\n\n")
	}
	if errMsg != "" {
		sb.WriteString("⚠️ " + esc(errMsg) + "\n\n")
	}
	sb.WriteString(esc("/add <name> | <occasion>") + "\n")
	sb.WriteString(italic("Back to dashboard: /back"))
	return sb.String()
}

func renderDetail(s *screens.RecipientDetail) string {
	var sb strings.Builder
	if r, ok := s.Recipient(); ok {
		sb.WriteString(bold("🎁 Gift ideas for "+r.Name) + "\n")
		sb.WriteString(esc("Occasion: "+r.OccasionOr(screens.TextNotAvailable)) + "\n\n")
	} else {
		sb.WriteString(esc(screens.TextLoadingRecipient) + "\n\n")
	}

	rows := s.Rows()
	if len(rows) == 0 {
		sb.WriteString(esc(screens.TextNoIdeas) + "\n")
	}
	for _, row := range rows {
		line := esc(fmt.Sprintf("#%d", row.ID)) + " " + bold(row.Text)
		if row.Note != nil {
			line += " · " + italic(*row.Note)
		}
		if row.Busy {
			line += " ⏳"
		}
		sb.WriteString(line + "\n")
		if row.Mode == editing.Editing {
			sb.WriteString(esc(fmt.Sprintf("   ✏️ text: %q, note: %q · /save %d · /cancel %d",
				row.Draft.Text, row.Draft.Note, row.ID, row.ID)) + "\n")
		}
	}

	form, errMsg := s.Form()
	if form.Text != "" || form.Note != "" {
		sb.WriteString("\n" + esc(fmt.Sprintf("New idea: %s (%s)", form.Text, form.Note)) + "\n")
	}
	if errMsg != "" {
		sb.WriteString("\n⚠️ " + esc(errMsg) + "\n")
	}
	if notice := s.Notice(); notice != "" {
		sb.WriteString("\n⚠️ " + esc(notice) + "\n")
	}
	sb.WriteString("\n" + italic("Add idea: /idea <text> | <note> · Edit: /edit <id> · Delete: /delete <id>"))
	sb.WriteString("\n" + italic("Back to dashboard: /back"))
	return sb.String()
}
