package bubbletea

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/fwojciec/ragchat"
	"github.com/mattn/go-runewidth"
)

const (
	inputHeight  = 3
	statusHeight = 1
	borderHeight = 2 // newlines between sections
	maxFileName  = 32
)

var _ tea.Model = Model{}

type noticeKind int

const (
	noticeInfo noticeKind = iota
	noticeSuccess
	noticeError
)

type notice struct {
	kind noticeKind
	text string
}

// Option configures a Model.
type Option func(*Model)

// WithEvents sets the queue the model reads session events from. The same
// queue's Publish must be registered as a session event handler.
func WithEvents(events *Events) Option {
	return func(m *Model) { m.events = events }
}

// WithOpenFunc enables the file picker. Selected paths are loaded with open.
func WithOpenFunc(open OpenFunc) Option {
	return func(m *Model) { m.open = open }
}

// WithStartDir sets the directory the file picker opens in.
func WithStartDir(dir string) Option {
	return func(m *Model) { m.startDir = dir }
}

// WithContext sets the context backend requests are issued with.
func WithContext(ctx context.Context) Option {
	return func(m *Model) { m.ctx = ctx }
}

// Model is the Bubble Tea model for the ragchat TUI.
type Model struct {
	// Input is the message editor. Exported for test access.
	Input textarea.Model
	// Viewport is the scrollable transcript. Exported for test access.
	Viewport viewport.Model

	session *ragchat.Session
	events  *Events
	open    OpenFunc
	ctx     context.Context
	theme   ragchat.Theme
	styles  Styles

	spinner  spinner.Model
	spinning bool

	picker   filepicker.Model
	picking  bool
	startDir string

	// bot caches rendered replies by turn id.
	bot map[int]*BotMessageBlock

	notice notice
	width  int
	height int
	ready  bool
}

// New creates a TUI Model driving session.
func New(session *ragchat.Session, theme ragchat.Theme, opts ...Option) Model {
	styles := NewStyles(theme)

	ta := textarea.New()
	ta.Placeholder = "Type your message..."
	ta.Prompt = ""
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(inputHeight)
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter"))
	ta.Focus()

	m := Model{
		Input:    ta,
		session:  session,
		ctx:      context.Background(),
		theme:    theme,
		styles:   styles,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.Muted)),
		startDir: ".",
		bot:      make(map[int]*BotMessageBlock),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Picking reports whether the file picker is open.
func (m Model) Picking() bool { return m.picking }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink}
	if m.events != nil {
		cmds = append(cmds, m.events.listen())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m = m.handleWindowSize(msg)
		return m, nil

	case tea.KeyMsg:
		if m.picking {
			return m.handlePickerKey(msg)
		}
		return m.handleKey(msg)

	case SessionEventMsg:
		m = m.processEvent(msg.Event)
		m = m.refresh()
		var cmd tea.Cmd
		if m.events != nil {
			cmd = m.events.listen()
		}
		return m, cmd

	case spinner.TickMsg:
		if !m.session.AwaitingReply() {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	if m.picking {
		// Directory listings arrive as messages private to the picker.
		m.picker, cmd = m.picker.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)
	m.Input, cmd = m.Input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	if m.picking {
		return m.styles.Accent.Render("Select a file to upload") + "\n" +
			m.picker.View() + "\n" +
			m.styles.Muted.Render("Enter to select, Esc to cancel")
	}

	var b strings.Builder
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	m.width, m.height = msg.Width, msg.Height
	vpHeight := max(msg.Height-inputHeight-statusHeight-borderHeight, 1)

	if !m.ready {
		m.Viewport = viewport.New(msg.Width, vpHeight)
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = vpHeight
	}
	m.Input.SetWidth(msg.Width)
	if m.picking {
		m.picker, _ = m.picker.Update(m.pickerSize())
	}
	return m.refresh()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit

	case tea.KeyEnter:
		if !msg.Alt {
			return m.submit()
		}

	case tea.KeyCtrlO:
		return m.openPicker()

	case tea.KeyCtrlU:
		return m.upload()

	case tea.KeyCtrlX:
		m.session.ClearFile()
		m.notice = notice{kind: noticeInfo, text: "File cleared"}
		return m, nil
	}

	// Character keys go to the editor only; 'j'/'k' are text here, not
	// scroll keys.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	if msg.Type != tea.KeyRunes {
		m.Viewport, cmd = m.Viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.Input, cmd = m.Input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	m.session.SetInput(m.Input.Value())
	if _, err := m.session.Submit(m.ctx); err != nil {
		m.notice = validationNotice(err)
		return m, nil
	}
	m.Input.Reset()
	m.notice = notice{}
	m = m.refresh()
	if m.spinning {
		return m, nil
	}
	m.spinning = true
	return m, m.spinner.Tick
}

func (m Model) upload() (tea.Model, tea.Cmd) {
	if err := m.session.UploadFile(m.ctx); err != nil {
		m.notice = validationNotice(err)
	}
	return m, nil
}

func (m Model) openPicker() (tea.Model, tea.Cmd) {
	if m.open == nil {
		m.notice = notice{kind: noticeError, text: "File selection is not available"}
		return m, nil
	}
	fp := filepicker.New()
	fp.CurrentDirectory = m.startDir
	fp, _ = fp.Update(m.pickerSize())
	m.picker = fp
	m.picking = true
	m.Input.Blur()
	return m, m.picker.Init()
}

func (m Model) closePicker() (Model, tea.Cmd) {
	m.picking = false
	return m, m.Input.Focus()
}

func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		return m.closePicker()
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	if ok, path := m.picker.DidSelectFile(msg); ok {
		f, err := m.open(path)
		if err != nil {
			m.notice = notice{kind: noticeError, text: fmt.Sprintf("Cannot open %s: %v", path, err)}
		} else {
			m.session.SelectFile(f)
			m.notice = notice{kind: noticeInfo, text: "Selected " + f.Name + ", Ctrl+U to upload"}
		}
		var focus tea.Cmd
		m, focus = m.closePicker()
		return m, tea.Batch(cmd, focus)
	}
	return m, cmd
}

func (m Model) pickerSize() tea.WindowSizeMsg {
	// Header and footer lines around the picker.
	return tea.WindowSizeMsg{Width: m.width, Height: max(m.height-2, 1)}
}

// processEvent turns session events into user-facing notices. Transcript
// changes are picked up by refresh.
func (m Model) processEvent(evt ragchat.Event) Model {
	switch e := evt.(type) {
	case ragchat.EventUploadStarted:
		m.notice = notice{kind: noticeInfo, text: "Uploading " + e.Name + "..."}
	case ragchat.EventUploadSucceeded:
		m.notice = notice{kind: noticeSuccess, text: "File uploaded successfully"}
	case ragchat.EventUploadFailed:
		m.notice = notice{kind: noticeError, text: "Upload failed: " + describeError(e.Err)}
	}
	return m
}

func (m Model) refresh() Model {
	if !m.ready {
		return m
	}
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()
	return m
}

// renderContent lays the transcript out by turn: each user message is
// followed by its reply, or by a failure marker if the request failed.
func (m Model) renderContent() string {
	msgs := m.session.Transcript().Threaded()
	if len(msgs) == 0 {
		return m.styles.Muted.Render("No messages yet. Ask something about your uploaded documents.")
	}
	width := m.Viewport.Width
	views := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		switch msg.Sender {
		case ragchat.SenderUser:
			status, _ := m.session.TurnStatus(msg.Turn)
			views = append(views, NewUserMessageBlock(msg.Text, status, m.styles).View(width))
		case ragchat.SenderBot:
			block, ok := m.bot[msg.Turn]
			if !ok {
				block = NewBotMessageBlock(msg.Text, m.theme, m.styles)
				m.bot[msg.Turn] = block
			}
			views = append(views, block.View(width))
		}
	}
	return strings.Join(views, "\n\n")
}

func (m Model) statusLine() string {
	var parts []string
	if f, ok := m.session.PendingFile(); ok {
		name := runewidth.Truncate(f.Name, maxFileName, "…")
		size := humanize.Bytes(uint64(f.Size()))
		parts = append(parts, m.styles.Accent.Render("["+name+" · "+size+"]"))
	}
	awaiting := m.session.AwaitingReply()
	if awaiting {
		parts = append(parts, m.spinner.View()+m.styles.Muted.Render(" waiting for reply"))
	}
	switch {
	case m.notice.text != "":
		parts = append(parts, m.renderNotice())
	case !awaiting:
		parts = append(parts, m.styles.Muted.Render("Enter send · Alt+Enter newline · Ctrl+O file · Ctrl+U upload · Ctrl+C quit"))
	}
	return strings.Join(parts, " ")
}

func (m Model) renderNotice() string {
	switch m.notice.kind {
	case noticeSuccess:
		return m.styles.Success.Render(m.notice.text)
	case noticeError:
		return m.styles.Error.Render(m.notice.text)
	default:
		return m.styles.Muted.Render(m.notice.text)
	}
}

// validationNotice renders a rejected user action. Upload and send
// preconditions are reported the same way.
func validationNotice(err error) notice {
	switch {
	case errors.Is(err, ragchat.ErrNoFileSelected):
		return notice{kind: noticeError, text: "Please select a file first"}
	case errors.Is(err, ragchat.ErrEmptyMessage):
		return notice{kind: noticeError, text: "Type a message first"}
	default:
		return notice{kind: noticeError, text: err.Error()}
	}
}
