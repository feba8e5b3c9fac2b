// Package cli is a local console over the engine: the same operations the
// Telegram transport exposes, driven from a terminal. Useful for trying the
// scheduler without a bot token.
package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/chzyer/readline"

	"github.com/notexe/vocab-trainer/internal/lookup"
	"github.com/notexe/vocab-trainer/internal/srs"
)

var (
	promptStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true)
	reminderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("222")).Bold(true)
	infoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// localUser is the fixed user id the console operates as.
const localUser int64 = 1

// Notifier prints engine deliveries to the terminal.
type Notifier struct{}

// SendNotification implements srs.Notifier.
func (Notifier) SendNotification(_ int64, text string) error {
	fmt.Println(reminderStyle.Render("🔔 Reminder: " + text))
	return nil
}

// SendMessage implements srs.Notifier.
func (Notifier) SendMessage(_ int64, text string) error {
	fmt.Println(infoStyle.Render(text))
	return nil
}

// Console is the interactive loop.
type Console struct {
	engine    *srs.Engine
	explainer *lookup.Explainer // nil when unconfigured
	packs     map[string][]string
	pageSize  int
	rl        *readline.Instance

	sort    srs.Ordering
	reverse bool
	page    int
}

// New creates a console over the engine.
func New(engine *srs.Engine, explainer *lookup.Explainer, packs map[string][]string, pageSize int) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          promptStyle.Render("vocab> "),
		HistoryLimit:    500,
		InterruptPrompt: "^C",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to setup readline: %w", err)
	}

	return &Console{
		engine:    engine,
		explainer: explainer,
		packs:     packs,
		pageSize:  pageSize,
		rl:        rl,
		page:      1,
	}, nil
}

// Run reads commands until EOF or "exit".
func (c *Console) Run(ctx context.Context) error {
	defer c.rl.Close()

	fmt.Println(infoStyle.Render("vocab-trainer console. Type 'help' for commands."))

	for {
		line, err := c.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			if err == io.EOF {
				fmt.Println(dimStyle.Render("Goodbye!"))
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		cmd, arg := splitCommand(line)
		if cmd == "exit" || cmd == "quit" {
			fmt.Println(dimStyle.Render("Goodbye!"))
			return nil
		}
		if err := c.handle(ctx, cmd, arg); err != nil {
			fmt.Println(errorStyle.Render("Error: " + err.Error()))
		}
	}
}

func splitCommand(line string) (cmd, arg string) {
	if i := strings.IndexByte(line, ' '); i > 0 {
		return strings.ToLower(line[:i]), strings.TrimSpace(line[i+1:])
	}
	return strings.ToLower(line), ""
}

func (c *Console) handle(ctx context.Context, cmd, arg string) error {
	switch cmd {
	case "help":
		c.printHelp()
	case "add":
		return c.add(arg)
	case "del":
		timers, rows := c.engine.CancelItemEverywhere(localUser, arg)
		fmt.Println(infoStyle.Render(fmt.Sprintf("Cancelled %d reminders, %d backlog rows.", timers, rows)))
	case "list":
		return c.list()
	case "page":
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 {
			return fmt.Errorf("usage: page <number>")
		}
		c.page = n
		return c.list()
	case "sort":
		switch arg {
		case "lex", "":
			c.sort, c.reverse = srs.OrderLexical, false
		case "ease":
			c.sort, c.reverse = srs.OrderEase, false
		case "ease-desc":
			c.sort, c.reverse = srs.OrderEase, true
		default:
			return fmt.Errorf("usage: sort lex|ease|ease-desc")
		}
		c.page = 1
		return c.list()
	case "pack":
		return c.enroll(arg)
	case "drop":
		return c.drop(arg)
	case "random":
		if word, ok := c.engine.RandomActive(localUser); ok {
			fmt.Println(infoStyle.Render("🎲 " + word))
		} else {
			fmt.Println(dimStyle.Render("Active set is empty."))
		}
	case "clue":
		if arg == "" {
			return fmt.Errorf("usage: clue <word>")
		}
		fmt.Println(infoStyle.Render(lookup.Clue(arg)))
	case "explain":
		return c.explain(ctx, arg)
	default:
		return fmt.Errorf("unknown command %q (try 'help')", cmd)
	}
	return nil
}

func (c *Console) add(arg string) error {
	res, err := c.engine.ScheduleItem(localUser, arg, srs.ProvenanceUser, 0)
	if err != nil {
		return err
	}
	if res == srs.Duplicate {
		fmt.Println(dimStyle.Render("Already in the dictionary."))
		return nil
	}
	fmt.Println(infoStyle.Render(fmt.Sprintf("Added %q: %d reminders, first in %s.",
		strings.TrimSpace(arg), c.engine.SequenceLength(), c.engine.FirstInterval())))
	return nil
}

func (c *Console) enroll(packID string) error {
	words, ok := c.packs[packID]
	if !ok {
		return fmt.Errorf("unknown pack %q", packID)
	}
	summary, err := c.engine.Enroll(localUser, packID, words)
	if err != nil {
		return err
	}
	fmt.Println(infoStyle.Render(fmt.Sprintf("Enrolled in %s: %d words over ~%d days.",
		summary.PackID, summary.Candidates, summary.Days)))
	return nil
}

func (c *Console) drop(arg string) error {
	parts := strings.SplitN(arg, " ", 2)
	if len(parts) != 2 {
		return fmt.Errorf("usage: drop <pack> <word>")
	}
	found, err := c.engine.CancelCandidate(localUser, parts[0], parts[1])
	if err != nil {
		return err
	}
	if !found {
		fmt.Println(dimStyle.Render("Not in that pack."))
		return nil
	}
	fmt.Println(infoStyle.Render("Marked cancelled in the pack plan."))
	return nil
}

func (c *Console) list() error {
	items, err := c.engine.Snapshot(localUser)
	if err != nil {
		return err
	}
	pageItems, page, totalPages := srs.Arrange(items, c.sort, c.reverse, c.pageSize, c.page)
	c.page = page

	fmt.Println(promptStyle.Render(fmt.Sprintf("Dictionary — page %d/%d", page, totalPages)))
	if len(pageItems) == 0 {
		fmt.Println(dimStyle.Render("  (empty)"))
		return nil
	}
	now := time.Now()
	for _, item := range pageItems {
		var status string
		if item.Status == srs.StatusPending {
			status = "starts " + item.EstimatedDate
		} else {
			status = "next due " + item.NextDue.Sub(now).Round(time.Minute).String()
		}
		fmt.Printf("  %-30s %s\n", item.Text,
			dimStyle.Render(fmt.Sprintf("[%s] %d left, %s", item.Status, item.Remaining, status)))
	}
	return nil
}

func (c *Console) explain(ctx context.Context, word string) error {
	if c.explainer == nil {
		return fmt.Errorf("AI explanations are not configured (set DEEPSEEK_API_KEY)")
	}
	if word == "" {
		return fmt.Errorf("usage: explain <word>")
	}

	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	explanation, err := c.explainer.Explain(ctx, word)
	if err != nil {
		return err
	}

	rendered, err := glamour.Render(explanation, "dark")
	if err != nil {
		fmt.Println(explanation)
		return nil
	}
	fmt.Print(rendered)
	return nil
}

func (c *Console) printHelp() {
	fmt.Println(infoStyle.Render(strings.Join([]string{
		"Commands:",
		"  add <word>          schedule the reminder sequence for a word",
		"  del <word>          cancel all reminders (and pack rows) for a word",
		"  list                show the dictionary page",
		"  page <n>            jump to a page",
		"  sort lex|ease|ease-desc",
		"  pack <id>           enroll in a curated pack",
		"  drop <pack> <word>  cancel one pack candidate",
		"  random              random active word",
		"  clue <word>         offline pronunciation clue",
		"  explain <word>      AI explanation",
		"  exit",
	}, "\n")))
}
