// Package tui provides the Bubble Tea study interface.
//
// Exactly one view is active at a time: home, study, results or history.
// Imports and AI explanations run as commands and report back as messages.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/checkcard/internal/ai"
	"github.com/verte-zerg/checkcard/internal/deck"
	"github.com/verte-zerg/checkcard/internal/extract"
	"github.com/verte-zerg/checkcard/internal/history"
	"github.com/verte-zerg/checkcard/internal/logging"
	"github.com/verte-zerg/checkcard/internal/model"
	"github.com/verte-zerg/checkcard/internal/reminder"
	"github.com/verte-zerg/checkcard/internal/session"
	"github.com/verte-zerg/checkcard/internal/source"
	"github.com/verte-zerg/checkcard/internal/stats"
)

const noCardsNotice = "Não foi possível extrair flashcards deste arquivo. Certifique-se de que o conteúdo contém perguntas de múltipla escolha."

type view int

const (
	viewHome view = iota
	viewStudy
	viewResults
	viewHistory
)

func (v view) String() string {
	switch v {
	case viewStudy:
		return "study"
	case viewResults:
		return "results"
	case viewHistory:
		return "history"
	default:
		return "home"
	}
}

// Options wires the UI to the application services.
type Options struct {
	Deck      *deck.Deck
	Ledger    *history.Ledger
	Extractor *extract.Extractor
	Resolver  *source.Resolver
	AI        ai.Collaborator
	// Open launches reminder links. Nil only shows the link.
	Open     reminder.Opener
	Shuffler session.Shuffler
	Logger   *slog.Logger
	// StartStudy opens the study view immediately.
	StartStudy bool
}

type importDoneMsg struct {
	target string
	cards  []model.Flashcard
	err    error
}

type explainDoneMsg struct {
	seq   int
	index int
	text  string
}

type openDoneMsg struct {
	err error
}

// Model implements the Bubble Tea study UI.
type Model struct {
	opts   Options
	ctx    context.Context
	logger *slog.Logger

	view   view
	width  int
	height int

	session    *session.Session
	sessionSeq int
	cursor     int
	selected   string
	result     session.Result

	importing   bool
	inputActive bool
	importInput textinput.Model

	explaining  bool
	explanation string

	calendarURL string

	notice    string
	noticeErr bool

	spinner      spinner.Model
	progress     progress.Model
	historyTable table.Model
}

// NewModel constructs the study UI model.
func NewModel(ctx context.Context, opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	if opts.AI == nil {
		opts.AI = ai.Disabled{}
	}
	input := textinput.New()
	input.Prompt = "Arquivo: "
	input.Placeholder = "deck.csv, https://... ou repo.git#caminho/deck.csv"
	input.CharLimit = 0

	m := &Model{
		opts:        opts,
		ctx:         ctx,
		logger:      logger,
		importInput: input,
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(accentStyle)),
		progress:    progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage(), progress.WithWidth(40)),
		historyTable: table.New(
			table.WithColumns([]table.Column{
				{Title: "Data", Width: 22},
				{Title: "Questões", Width: 10},
				{Title: "Score", Width: 9},
				{Title: "%", Width: 5},
			}),
			table.WithFocused(true),
			table.WithHeight(10),
			table.WithWidth(50),
			table.WithStyles(historyTableStyles()),
		),
	}
	if opts.StartStudy {
		m.startStudy()
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil
	case spinner.TickMsg:
		if !m.importing && !m.explaining {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case importDoneMsg:
		return m.finishImport(msg)
	case explainDoneMsg:
		if m.view != viewStudy || m.session == nil || msg.seq != m.sessionSeq || msg.index != m.session.Index() {
			m.logger.Debug("discarding stale explanation", "seq", msg.seq, "index", msg.index)
			return m, nil
		}
		m.explaining = false
		m.explanation = msg.text
		return m, nil
	case openDoneMsg:
		if msg.err != nil {
			m.setNotice("Não foi possível abrir o navegador: "+msg.err.Error(), true)
		} else {
			m.setNotice("Lembrete aberto no navegador.", false)
		}
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.inputActive {
			return m.updateImportInput(msg)
		}
		if msg.Type == tea.KeyEsc {
			m.goHome()
			return m, nil
		}
		switch m.view {
		case viewHome:
			return m.updateHome(msg)
		case viewStudy:
			return m.updateStudy(msg)
		case viewResults:
			return m.updateResults(msg)
		case viewHistory:
			return m.updateHistory(msg)
		}
	}
	return m, nil
}

func (m *Model) updateHome(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "enter", "s":
		m.startStudy()
	case "i":
		if m.importing {
			m.setNotice("Uma importação já está em andamento; aguarde.", false)
			return m, nil
		}
		m.inputActive = true
		m.importInput.SetValue("")
		return m, m.importInput.Focus()
	case "h":
		m.openHistory()
	}
	return m, nil
}

func (m *Model) updateImportInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.closeImportInput()
		return m, nil
	case tea.KeyEnter:
		m.closeImportInput()
		return m.beginImport(strings.TrimSpace(m.importInput.Value()))
	}
	var cmd tea.Cmd
	m.importInput, cmd = m.importInput.Update(msg)
	return m, cmd
}

func (m *Model) updateStudy(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.session == nil {
		return m, nil
	}
	answered := m.session.Answered()
	key := msg.String()
	switch key {
	case "left", "h":
		if !answered {
			m.cursor = (m.cursor + len(model.Letters) - 1) % len(model.Letters)
		}
	case "right", "l":
		if !answered {
			m.cursor = (m.cursor + 1) % len(model.Letters)
		}
	case "a", "b", "c", "d", "e", "A", "B", "C", "D", "E":
		m.answer(strings.ToUpper(key))
	case "enter":
		if answered {
			m.next()
		} else {
			m.answer(model.Letters[m.cursor])
		}
	case "n":
		if answered {
			m.next()
		}
	case "x":
		if answered && !m.explaining && m.explanation == "" {
			return m, m.explain()
		}
	}
	return m, nil
}

func (m *Model) updateResults(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "r":
		m.startStudy()
	case "c":
		link := reminder.CalendarURL(m.result.Score, m.result.Total)
		m.calendarURL = link
		if m.opts.Open == nil {
			return m, nil
		}
		open, ctx := m.opts.Open, m.ctx
		return m, func() tea.Msg {
			return openDoneMsg{err: open(ctx, link)}
		}
	case "enter", "q":
		m.goHome()
	}
	return m, nil
}

func (m *Model) updateHistory(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "X":
		if err := m.opts.Ledger.Clear(m.ctx); err != nil {
			m.setNotice(err.Error(), true)
		} else {
			m.setNotice("Histórico apagado.", false)
		}
		m.refreshHistoryTable()
		return m, nil
	case "q", "backspace":
		m.goHome()
		return m, nil
	}
	var cmd tea.Cmd
	m.historyTable, cmd = m.historyTable.Update(msg)
	return m, cmd
}

func (m *Model) closeImportInput() {
	m.inputActive = false
	m.importInput.Blur()
}

func (m *Model) goHome() {
	m.closeImportInput()
	m.view = viewHome
	m.session = nil
	m.sessionSeq++
	m.explaining = false
	m.explanation = ""
	m.calendarURL = ""
}

func (m *Model) startStudy() {
	sess, err := session.Start(m.opts.Deck.Cards(), m.opts.Shuffler)
	if err != nil {
		m.setNotice(err.Error(), true)
		return
	}
	m.closeImportInput()
	m.session = sess
	m.sessionSeq++
	m.resetCard()
	m.calendarURL = ""
	m.notice = ""
	m.view = viewStudy
	m.logger.Debug("session started", "cards", sess.Total())
}

func (m *Model) resetCard() {
	m.cursor = 0
	m.selected = ""
	m.explaining = false
	m.explanation = ""
}

func (m *Model) answer(letter string) {
	if _, err := m.session.Answer(letter); err != nil {
		return
	}
	m.selected = letter
}

func (m *Model) next() {
	result, done := m.session.Advance()
	if !done {
		m.resetCard()
		return
	}
	m.result = result
	m.explaining = false
	if _, err := m.opts.Ledger.Record(m.ctx, result.Score, result.Total); err != nil {
		m.logger.Error("failed to record session", "error", err)
		m.setNotice("Falha ao salvar o histórico: "+err.Error(), true)
	}
	m.view = viewResults
}

func (m *Model) explain() tea.Cmd {
	card, ok := m.session.Current()
	if !ok {
		return nil
	}
	req := ai.ExplainRequest{
		Question:        card.Frente,
		CorrectAnswer:   card.Gabarito,
		ExplanationText: card.Verso,
		UserAnswer:      m.selected,
	}
	seq, index := m.sessionSeq, m.session.Index()
	collab, ctx := m.opts.AI, m.ctx
	m.explaining = true
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return explainDoneMsg{seq: seq, index: index, text: collab.Explain(ctx, req)}
	})
}

func (m *Model) beginImport(target string) (tea.Model, tea.Cmd) {
	if target == "" {
		return m, nil
	}
	if m.importing {
		m.setNotice("Uma importação já está em andamento; aguarde.", false)
		return m, nil
	}
	if err := extract.CheckExtension(source.Name(target)); err != nil {
		m.setNotice(err.Error(), true)
		return m, nil
	}
	m.importing = true
	m.notice = ""
	return m, tea.Batch(m.spinner.Tick, m.importCmd(target))
}

func (m *Model) importCmd(target string) tea.Cmd {
	resolver, extractor, ctx := m.opts.Resolver, m.opts.Extractor, m.ctx
	return func() tea.Msg {
		doc, err := resolver.Resolve(ctx, target)
		if err != nil {
			return importDoneMsg{target: target, err: err}
		}
		cards, err := extractor.Extract(ctx, doc.Content, extract.FormatFromName(doc.Name))
		return importDoneMsg{target: target, cards: cards, err: err}
	}
}

func (m *Model) finishImport(msg importDoneMsg) (tea.Model, tea.Cmd) {
	m.importing = false
	if msg.err != nil {
		m.logger.Warn("import failed", "target", msg.target, "error", msg.err)
		if errors.Is(msg.err, extract.ErrNoCards) {
			m.setNotice(noCardsNotice, true)
		} else {
			m.setNotice("Falha na importação: "+msg.err.Error(), true)
		}
		return m, nil
	}
	if err := m.opts.Deck.Replace(m.ctx, msg.cards); err != nil {
		m.setNotice("Falha ao salvar o deck: "+err.Error(), true)
		return m, nil
	}
	m.logger.Info("deck imported", "target", msg.target, "cards", len(msg.cards))
	if m.view != viewHome {
		m.setNotice(fmt.Sprintf("%d cards importados de %s.", len(msg.cards), source.Name(msg.target)), false)
		return m, nil
	}
	m.startStudy()
	return m, nil
}

func (m *Model) openHistory() {
	m.closeImportInput()
	m.refreshHistoryTable()
	m.view = viewHistory
}

func (m *Model) refreshHistoryTable() {
	entries := m.opts.Ledger.Entries()
	rows := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, table.Row{
			e.Date,
			fmt.Sprintf("%d Questões", e.Total),
			fmt.Sprintf("%d / %d", e.Score, e.Total),
			fmt.Sprintf("%.0f%%", e.Percent()),
		})
	}
	m.historyTable.SetRows(rows)
	m.historyTable.SetCursor(0)
}

func (m *Model) resize() {
	w := m.width - 10
	if w > 60 {
		w = 60
	}
	if w < 10 {
		w = 10
	}
	m.progress.Width = w
	h := m.height - 10
	if h < 3 {
		h = 3
	}
	m.historyTable.SetHeight(h)
	m.importInput.Width = contentWidth(m.width) - lipgloss.Width(m.importInput.Prompt)
}

func (m *Model) setNotice(text string, isErr bool) {
	m.notice = text
	m.noticeErr = isErr
}

// View implements tea.Model.
func (m *Model) View() string {
	var body string
	switch m.view {
	case viewStudy:
		body = m.viewStudy()
	case viewResults:
		body = m.viewResults()
	case viewHistory:
		body = m.viewHistory()
	default:
		body = m.viewHome()
	}
	if m.notice != "" {
		style := noticeStyle
		if m.noticeErr {
			style = errorStyle
		}
		body += "\n\n" + style.Render(strings.Join(wrapText(m.notice, contentWidth(m.width)), "\n"))
	}
	footer := m.renderFooter()
	if m.width == 0 || m.height < 3 {
		return body + "\n\n" + footer
	}
	bodyView := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, body)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return bodyView + "\n" + footerLine
}

func (m *Model) viewHome() string {
	origin := "padrão"
	if m.opts.Deck.Custom() {
		origin = "importado"
	}
	lines := []string{
		titleStyle.Render("CheckCard ") + accentStyle.Render("Pro"),
		mutedStyle.Render("O sistema definitivo de flashcards MCQ."),
		"",
		textStyle.Render(fmt.Sprintf("Deck atual: %d cards (%s)", m.opts.Deck.Len(), origin)),
		"",
		mutedStyle.Render("[enter] Iniciar  [i] Importar  [h] Histórico  [q] Sair"),
	}
	if m.inputActive {
		lines = append(lines, "", m.importInput.View(), mutedStyle.Render("enter importa · esc cancela"))
	}
	if m.importing {
		lines = append(lines, "", m.spinner.View()+" Importando e extraindo cards...")
	}
	return strings.Join(lines, "\n")
}

func (m *Model) viewStudy() string {
	if m.session == nil {
		return ""
	}
	card, ok := m.session.Current()
	if !ok {
		return ""
	}
	width := contentWidth(m.width)
	if width == 0 {
		width = 60
	}
	header := fmt.Sprintf("Card %d de %d", m.session.Index()+1, m.session.Total())
	score := scoreStyle.Render(fmt.Sprintf("✓ %d Acertos", m.session.Score()))
	lines := []string{
		mutedStyle.Render(header) + "   " + score,
		m.progress.ViewAs(m.session.Progress()),
		"",
		cardStyle.Width(width).Render(strings.Join(wrapText(card.Frente, width-2), "\n")),
		"",
		m.renderOptions(card),
	}
	if m.session.Answered() {
		explanation := []string{accentStyle.Render("Explicação"), strings.Join(wrapText(card.Verso, width-4), "\n")}
		switch {
		case m.explaining:
			explanation = append(explanation, "", m.spinner.View()+" Consultando a IA...")
		case m.explanation != "":
			explanation = append(explanation, "", accentStyle.Render("IA"), strings.Join(wrapText(m.explanation, width-4), "\n"))
		}
		lines = append(lines, "", explainStyle.Render(strings.Join(explanation, "\n")),
			"", mutedStyle.Render("[n] Próximo card  [x] Perguntar à IA  [esc] Sair"))
	} else {
		lines = append(lines, "", mutedStyle.Render("[a-e] Responder  [←/→ enter] Escolher  [esc] Sair"))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderOptions(card model.Flashcard) string {
	answered := m.session.Answered()
	boxes := make([]string, 0, len(model.Letters))
	for i, letter := range model.Letters {
		style := optionIdle
		switch {
		case !answered && i == m.cursor:
			style = optionCursor
		case answered && letter == m.selected && letter == card.Gabarito:
			style = optionRight
		case answered && letter == m.selected:
			style = optionWrong
		case answered && letter == card.Gabarito:
			style = optionExpected
		case answered:
			style = optionDimmed
		}
		boxes = append(boxes, style.Render(letter))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
}

func (m *Model) viewResults() string {
	pct := 0
	if m.result.Total > 0 {
		pct = int(math.Round(float64(m.result.Score) / float64(m.result.Total) * 100))
	}
	lines := []string{
		titleStyle.Render("Sessão Finalizada!"),
		mutedStyle.Render("Você concluiu seu estudo."),
		"",
		bandStyle(float64(pct)).Render(fmt.Sprintf("Precisão %d/%d", m.result.Score, m.result.Total)) +
			"   " + bandStyle(float64(pct)).Render(fmt.Sprintf("Score %d%%", pct)),
		"",
		mutedStyle.Render("[r] Refazer Estudo  [c] Lembrete na Agenda  [esc] Ir para Dashboard"),
	}
	if m.calendarURL != "" {
		lines = append(lines, "", mutedStyle.Render("Link do lembrete:"), m.calendarURL)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) viewHistory() string {
	lines := []string{titleStyle.Render("Meu Histórico"), ""}
	entries := m.opts.Ledger.Entries()
	if len(entries) == 0 {
		lines = append(lines, mutedStyle.Render("Nenhuma sessão registrada ainda."))
	} else {
		lines = append(lines, m.historyTable.View())
		if idx := m.historyTable.Cursor(); idx >= 0 && idx < len(entries) {
			e := entries[idx]
			lines = append(lines, "", bandStyle(e.Percent()).Render(fmt.Sprintf("%s  %d / %d", e.Date, e.Score, e.Total)))
		}
	}
	lines = append(lines, "", mutedStyle.Render("[↑/↓] Navegar  [X] Limpar Tudo  [esc] Voltar"))
	return strings.Join(lines, "\n")
}

func (m *Model) renderFooter() string {
	segments := []string{fmt.Sprintf("Deck %d cards", m.opts.Deck.Len())}
	entries := m.opts.Ledger.Entries()
	if len(entries) > 0 {
		last := entries[0]
		summary := stats.Summarize(entries)
		segments = append(segments,
			fmt.Sprintf("Última %d/%d", last.Score, last.Total),
			fmt.Sprintf("Média %.0f%% em %d sessões", summary.AvgPercent, summary.Sessions),
			stats.Sparkline(stats.Chronological(entries)),
		)
	}
	return footerStyle.Render(strings.Join(segments, "  ·  "))
}
