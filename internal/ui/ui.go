package ui

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	domainErrors "github.com/thomas-vilte/matetest/internal/errors"
	"github.com/thomas-vilte/matetest/internal/i18n"
	"github.com/thomas-vilte/matetest/internal/models"
)

var (
	// Colors for different message types
	Success = color.New(color.FgGreen, color.Bold)
	Error   = color.New(color.FgRed, color.Bold)
	Warning = color.New(color.FgYellow, color.Bold)
	Info    = color.New(color.FgCyan, color.Bold)
	Accent  = color.New(color.FgMagenta, color.Bold)
	Dim     = color.New(color.FgHiBlack)

	MateEmoji    = "🧉"
	SuccessEmoji = Success.Sprint("✅")
	WarningEmoji = Warning.Sprint("⚠️")
	InfoEmoji    = Info.Sprint("ℹ️")
	RocketEmoji  = Accent.Sprint("🚀")
	StatsEmoji   = Accent.Sprint("📊")
)

var activeSpinner *SmartSpinner

// SmartSpinner wraps a terminal spinner that also prints the final status line.
// The spinner only animates when w is a terminal.
type SmartSpinner struct {
	spinner *spinner.Spinner
	w       io.Writer
}

func NewSmartSpinner(w io.Writer, initialMessage string) *SmartSpinner {
	s := spinner.New(
		spinner.CharSets[14],
		100*time.Millisecond,
		spinner.WithColor("cyan"),
		spinner.WithWriter(w),
		spinner.WithSuffix(" "+MateEmoji+" "+initialMessage),
	)
	return &SmartSpinner{spinner: s, w: w}
}

// Start starts the spinner and registers it as the active one.
func (s *SmartSpinner) Start() {
	activeSpinner = s
	s.spinner.Start()
}

func (s *SmartSpinner) Stop() {
	s.spinner.Stop()
	if activeSpinner == s {
		activeSpinner = nil
	}
}

// StopActiveSpinner stops whatever spinner is currently running.
func StopActiveSpinner() {
	if activeSpinner != nil {
		activeSpinner.Stop()
	}
}

func (s *SmartSpinner) UpdateMessage(msg string) {
	s.spinner.Suffix = " " + MateEmoji + " " + msg
}

func (s *SmartSpinner) Success(msg string) {
	s.Stop()
	PrintSuccess(s.w, msg)
}

func (s *SmartSpinner) Error(msg string) {
	s.Stop()
	PrintError(s.w, msg)
}

func (s *SmartSpinner) Warning(msg string) {
	s.Stop()
	PrintWarning(s.w, msg)
}

func PrintSuccess(w io.Writer, msg string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", SuccessEmoji, Success.Sprint(msg))
}

func PrintError(w io.Writer, msg string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", Error.Sprint("❌"), Error.Sprint(msg))
}

func PrintWarning(w io.Writer, msg string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", WarningEmoji, Warning.Sprint(msg))
}

func PrintInfo(w io.Writer, msg string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", InfoEmoji, Info.Sprint(msg))
}

func PrintSectionBanner(w io.Writer, title string) {
	separator := color.New(color.FgCyan).Sprint("━━━━━━━━━━━━━━━━━━━━━━━")
	_, _ = fmt.Fprintf(w, "\n%s\n", separator)
	_, _ = fmt.Fprintf(w, "%s %s\n", RocketEmoji, Accent.Sprint(title))
	_, _ = fmt.Fprintf(w, "%s\n\n", separator)
}

func PrintDuration(w io.Writer, msg string, duration time.Duration) {
	durationStr := Dim.Sprintf("(%s)", duration.Round(10*time.Millisecond))
	_, _ = fmt.Fprintf(w, "%s %s %s\n", SuccessEmoji, Success.Sprint(msg), durationStr)
}

func PrintKeyValue(w io.Writer, key, value string) {
	keyColored := Dim.Sprint(key + ":")
	valueColored := color.New(color.FgWhite, color.Bold).Sprint(value)
	_, _ = fmt.Fprintf(w, "   %s %s\n", keyColored, valueColored)
}

// HandleAppError prints err in a friendly way. If t is nil, English defaults are used.
func HandleAppError(w io.Writer, err error, t *i18n.Translations) {
	if err == nil {
		return
	}
	StopActiveSpinner()

	var appErr *domainErrors.AppError
	if !errors.As(err, &appErr) {
		PrintError(w, err.Error())
		return
	}

	errorColor := color.New(color.FgRed, color.Bold)
	suggestionColor := color.New(color.FgCyan)

	_, _ = fmt.Fprintln(w)
	_, _ = errorColor.Fprintf(w, "❌ %s: %s\n", appErr.Type, appErr.Message)

	if appErr.Err != nil {
		details := "Details"
		if t != nil {
			details = t.GetMessage("ui_error.details", 0, nil)
		}
		_, _ = Dim.Fprintf(w, "   %s: %v\n", details, appErr.Err)
	}

	if appErr.Suggestion != "" {
		_, _ = fmt.Fprintln(w)
		tryPrefix := "💡 Try: "
		if t != nil {
			tryPrefix = t.GetMessage("ui_error.try_suggestion", 0, nil)
		}
		_, _ = suggestionColor.Fprint(w, tryPrefix)
		for i, line := range strings.Split(appErr.Suggestion, "\n") {
			if i == 0 {
				_, _ = fmt.Fprintln(w, line)
			} else {
				_, _ = fmt.Fprintf(w, "       %s\n", line)
			}
		}
	}
	_, _ = fmt.Fprintln(w)
}

// FileChange is a changed path together with its change category.
type FileChange struct {
	Path     string
	Category string
}

// ShowChangesTree prints the files of a ChangeSet as a directory tree.
func ShowChangesTree(w io.Writer, changes models.ChangeSet, headerMessage string) {
	var files []FileChange
	for _, category := range []string{models.ChangeAdded, models.ChangeModified, models.ChangeRemoved} {
		for _, path := range changes.Files(category) {
			files = append(files, FileChange{Path: path, Category: category})
		}
	}
	if len(files) == 0 {
		return
	}

	_, _ = fmt.Fprintf(w, "\n%s %s\n", StatsEmoji, headerMessage)
	printTree(w, buildFileTree(files), "", true)
}

type treeNode struct {
	name     string
	isFile   bool
	change   *FileChange
	children map[string]*treeNode
}

func buildFileTree(changes []FileChange) *treeNode {
	root := &treeNode{children: make(map[string]*treeNode)}

	for i := range changes {
		change := &changes[i]
		parts := strings.Split(change.Path, "/")
		current := root

		for j, part := range parts {
			isFile := j == len(parts)-1
			if current.children[part] == nil {
				current.children[part] = &treeNode{
					name:     part,
					isFile:   isFile,
					children: make(map[string]*treeNode),
				}
				if isFile {
					current.children[part].change = change
				}
			}
			current = current.children[part]
		}
	}
	return root
}

func printTree(w io.Writer, node *treeNode, prefix string, isLast bool) {
	if node.name != "" {
		connector := "├── "
		if isLast {
			connector = "└── "
		}

		name := node.name
		if !node.isFile {
			name = Info.Sprint(name + "/")
		}

		marker := ""
		if node.isFile && node.change != nil {
			marker = " " + categoryMarker(node.change.Category)
		}

		_, _ = fmt.Fprintf(w, "%s%s%s%s\n", prefix, connector, name, marker)
	}

	childPrefix := prefix
	if node.name != "" {
		if isLast {
			childPrefix += "    "
		} else {
			childPrefix += "│   "
		}
	}

	keys := make([]string, 0, len(node.children))
	for key := range node.children {
		keys = append(keys, key)
	}
	sortFileTree(keys, node.children)

	for i, key := range keys {
		printTree(w, node.children[key], childPrefix, i == len(keys)-1)
	}
}

// sortFileTree sorts directories first, then files, each alphabetically.
func sortFileTree(keys []string, nodes map[string]*treeNode) {
	sort.Slice(keys, func(i, j int) bool {
		a, b := nodes[keys[i]], nodes[keys[j]]
		if a.isFile != b.isFile {
			return !a.isFile
		}
		return keys[i] < keys[j]
	})
}

func categoryMarker(category string) string {
	switch category {
	case models.ChangeAdded:
		return color.New(color.FgGreen).Sprint("(+)")
	case models.ChangeRemoved:
		return color.New(color.FgRed).Sprint("(-)")
	default:
		return color.New(color.FgYellow).Sprint("(~)")
	}
}
