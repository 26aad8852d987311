package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tayloree/skinrec/internal/catalog"
	"github.com/tayloree/skinrec/internal/recommend"
)

const (
	minTUIWidth  = 92
	minTUIHeight = 24
)

var (
	tuiHeaderStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	tuiMetaStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	tuiHintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	tuiValueStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	tuiFallbackStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	tuiProductStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	tuiMatchStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	tuiMutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	tuiSectionStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
)

type tuiLoadConfig struct {
	ctx          context.Context
	location     string
	initialQuery recommend.Query
}

type tuiDataLoadedMsg struct {
	catalog      *catalog.Catalog
	initialQuery recommend.Query
}

type tuiDataLoadErrMsg struct {
	err error
}

type tuiFocus int

const (
	tuiFocusList tuiFocus = iota
	tuiFocusDetail
)

type tuiGroupItem struct {
	name    string
	count   int
	ordinal int
}

func (g tuiGroupItem) FilterValue() string { return strings.ToLower(g.name) }
func (g tuiGroupItem) Title() string       { return fmt.Sprintf("%d. %s", g.ordinal, g.name) }
func (g tuiGroupItem) Description() string {
	return fmt.Sprintf("Section header • %d products", g.count)
}

type tuiProductItem struct {
	product     catalog.Product
	rank        int
	group       string
	title       string
	description string
	filterValue string
}

func (p tuiProductItem) FilterValue() string { return p.filterValue }
func (p tuiProductItem) Title() string       { return p.title }
func (p tuiProductItem) Description() string { return p.description }

type productsTUIModel struct {
	loading  bool
	spinner  spinner.Model
	loadCmd  tea.Cmd
	fatalErr error

	catalog *catalog.Catalog
	result  recommend.Result

	query        recommend.Query
	initialQuery recommend.Query

	sortChoices     []recommend.SortMode
	sortIndex       int
	skinTypeChoices []string
	skinTypeIndex   int
	categoryChoices []string
	categoryIndex   int
	brandChoices    []string
	brandIndex      int
	limitChoices    []int
	limitIndex      int

	list   list.Model
	detail viewport.Model

	focus      tuiFocus
	showHelp   bool
	selectedID string

	groupStarts     []int
	visibleProducts int

	width, height int
	layout        tuiLayout
}

func newLoadingProductsTUIModel(cfg tuiLoadConfig) productsTUIModel {
	delegate := list.NewDefaultDelegate()
	delegate.SetHeight(2)
	delegate.SetSpacing(1)

	lst := list.New([]list.Item{}, delegate, 0, 0)
	lst.Title = "Recommendations"
	lst.SetStatusBarItemName("item", "items")
	lst.SetShowStatusBar(true)
	lst.SetFilteringEnabled(true)
	lst.SetShowHelp(false)
	lst.SetShowPagination(true)
	lst.DisableQuitKeybindings()

	detail := viewport.New(0, 0)
	detail.KeyMap.PageDown.SetKeys("f", "pgdown")
	detail.KeyMap.PageUp.SetKeys("b", "pgup")
	detail.KeyMap.HalfPageDown.SetKeys("d")
	detail.KeyMap.HalfPageUp.SetKeys("u")

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))

	return productsTUIModel{
		loading:      true,
		spinner:      spin,
		loadCmd:      loadTUIDataCmd(cfg),
		initialQuery: cfg.initialQuery,
		query:        cfg.initialQuery,
		list:         lst,
		detail:       detail,
		focus:        tuiFocusList,
	}
}

func loadTUIDataCmd(cfg tuiLoadConfig) tea.Cmd {
	return func() tea.Msg {
		c, err := loadTUIData(cfg.ctx, cfg.location)
		if err != nil {
			return tuiDataLoadErrMsg{err: err}
		}
		return tuiDataLoadedMsg{catalog: c, initialQuery: cfg.initialQuery}
	}
}

func (m productsTUIModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadCmd)
}

func (m productsTUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tuiDataLoadedMsg:
		m.loading = false
		m.catalog = msg.catalog
		m.initialQuery = canonicalizeTUIQuery(msg.initialQuery)
		m.query = m.initialQuery
		m.initializeInlineChoices()
		m.applyCurrentQuery(true)
		m.resize()
		return m, nil

	case tuiDataLoadErrMsg:
		m.loading = false
		m.fatalErr = msg.err
		return m, tea.Quit

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.String() == "ctrl+c" || (m.loading && keyMsg.String() == "q") {
			return m, tea.Quit
		}
		if !m.loading && m.list.FilterState() != list.Filtering {
			if next, cmd, handled := m.handleKey(keyMsg); handled {
				return next, cmd
			}
		}
	}
	if m.loading {
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	m.refreshDetail(false)
	return m, cmd
}

// handleKey applies browser shortcuts. Keys it does not claim fall through
// to the list, which owns navigation and fuzzy filtering.
func (m productsTUIModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	key := msg.String()
	if choice, ok := tuiChoiceKeys[key]; ok {
		m.cycle(choice)
		return m, nil, true
	}

	switch key {
	case "q":
		return m, tea.Quit, true
	case "tab":
		m.focus = 1 - m.focus
		return m, nil, true
	case "esc":
		if m.focus == tuiFocusDetail {
			m.focus = tuiFocusList
			return m, nil, true
		}
	case "?":
		m.showHelp = !m.showHelp
		m.resize()
		return m, nil, true
	case "r":
		m.query = m.initialQuery
		m.syncChoiceIndexesFromQuery()
		m.applyCurrentQuery(false)
		return m, nil, true
	case "]", "[", "1", "2", "3", "4", "5", "6", "7", "8", "9":
		if m.list.IsFiltered() {
			return m, m.list.NewStatusMessage("Clear fuzzy filter before section jumps."), true
		}
		switch key {
		case "]":
			m.jumpSection(1)
		case "[":
			m.jumpSection(-1)
		default:
			m.jumpToSection(int(key[0] - '1'))
		}
		return m, nil, true
	}

	if m.focus == tuiFocusDetail {
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd, true
	}
	return m, nil, false
}

func (m productsTUIModel) View() string {
	if m.loading {
		return m.loadingView()
	}
	if m.width == 0 || m.height == 0 {
		return tuiMetaStyle.Render("Loading interface...")
	}
	if m.layout.tooSmall {
		return lipgloss.NewStyle().
			Padding(1, 2).
			Render(
				fmt.Sprintf(
					"Terminal too small (%dx%d).\nResize to at least %dx%d for the two-pane product browser.",
					m.width, m.height, minTUIWidth, minTUIHeight,
				),
			)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.headerView(),
		m.bodyView(),
		m.footerView(),
	)
}

func (m productsTUIModel) loadingView() string {
	width := m.width
	if width == 0 {
		width = 80
	}
	lines := []string{
		tuiHeaderStyle.Render("skinrec tui"),
		tuiMetaStyle.Render("Preparing interactive interface..."),
		"",
		fmt.Sprintf("%s Loading product catalog", m.spinner.View()),
		tuiHintStyle.Render("Tip: press q to cancel."),
	}
	return lipgloss.NewStyle().
		Width(width).
		Padding(1, 2).
		Render(strings.Join(lines, "\n"))
}

// tuiLayout is the pane geometry for one terminal size.
type tuiLayout struct {
	tooSmall    bool
	bodyHeight  int
	listWidth   int
	detailWidth int
}

func computeTUILayout(width, height int, showHelp bool) tuiLayout {
	if width < minTUIWidth || height < minTUIHeight {
		return tuiLayout{tooSmall: true}
	}

	footer := 2
	if showHelp {
		footer = 7
	}
	l := tuiLayout{bodyHeight: maxInt(8, height-3-footer-1)}

	// The list takes a bit less than half; the detail pane keeps at least 36 columns.
	l.listWidth = maxInt(40, width*43/100)
	if l.listWidth > width-42 {
		l.listWidth = width / 2
	}
	l.detailWidth = width - l.listWidth - 1
	if l.detailWidth < 36 {
		l.detailWidth = 36
		l.listWidth = width - l.detailWidth - 1
	}
	return l
}

func (m *productsTUIModel) resize() {
	if m.width == 0 || m.height == 0 || m.loading {
		return
	}

	m.layout = computeTUILayout(m.width, m.height, m.showHelp)
	if m.layout.tooSmall {
		return
	}

	inner := maxInt(6, m.layout.bodyHeight-2)
	m.list.SetSize(maxInt(24, m.layout.listWidth-4), inner)
	m.detail.Width = maxInt(24, m.layout.detailWidth-4)
	m.detail.Height = inner
	m.refreshDetail(false)
}

func (m productsTUIModel) headerView() string {
	focus := "list"
	if m.focus == tuiFocusDetail {
		focus = "detail"
	}

	message := m.result.Message
	if m.result.Tier == recommend.TierFallback {
		message = tuiFallbackStyle.Render(message)
	}
	top := fmt.Sprintf("skinrec tui  |  %s (%d products)  |  ", emptyIf(m.catalog.Source(), "catalog"), m.catalog.Len())
	bottom := fmt.Sprintf(
		"products: %d shown / %d matched  |  query: %s  |  focus: %s",
		m.visibleProducts, len(m.result.Products), m.activeQuerySummary(), focus,
	)

	return lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 1).
		Render(tuiHeaderStyle.Render(top) + message + "\n" + tuiMetaStyle.Render(bottom))
}

func (m productsTUIModel) bodyView() string {
	listBorder := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("241")).
		Padding(0, 1)
	detailBorder := listBorder

	if m.focus == tuiFocusList {
		listBorder = listBorder.BorderForeground(lipgloss.Color("86"))
	} else {
		detailBorder = detailBorder.BorderForeground(lipgloss.Color("86"))
	}

	left := listBorder.Width(m.layout.listWidth).Height(m.layout.bodyHeight).Render(m.list.View())
	right := detailBorder.Width(m.layout.detailWidth).Height(m.layout.bodyHeight).Render(m.detail.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)
}

func (m productsTUIModel) footerView() string {
	base := "Tab switch pane • / fuzzy filter • s sort • t skin type • c category • B brand • l limit • r reset • [/] section jump • q quit"
	if m.focus == tuiFocusDetail {
		base = "Detail: j/k or ↑/↓ scroll • u/d half-page • b/f page • esc list • ? help • q quit"
	}

	if !m.showHelp {
		return lipgloss.NewStyle().Padding(0, 1).Render(tuiHintStyle.Render(base))
	}

	lines := []string{
		"Key Help",
		"list pane: ↑/↓ or j/k move • / fuzzy filter • s sort • t skin type • c category • B brand • l limit",
		"group jumps: ] next category • [ previous category • 1..9 jump to numbered category header",
		"detail pane: j/k or ↑/↓ scroll • u/d half-page • b/f page up/down",
		"global: tab switch pane • esc list • r reset query • ? toggle help • q quit • ctrl+c force quit",
	}
	return lipgloss.NewStyle().
		Padding(0, 1).
		Render(tuiHintStyle.Render(strings.Join(lines, "\n")))
}

func (m *productsTUIModel) initializeInlineChoices() {
	m.query = canonicalizeTUIQuery(m.query)

	m.sortChoices = append([]recommend.SortMode(nil), recommend.SortModes...)
	m.skinTypeChoices = buildSkinTypeChoices(m.catalog, m.query.SkinType)
	m.categoryChoices = buildCountedChoices(m.catalog.Categories(), m.query.Category)
	m.brandChoices = buildCountedChoices(m.catalog.Brands(), m.query.Brand)
	m.limitChoices = buildLimitChoices(m.query.Limit)

	m.syncChoiceIndexesFromQuery()
}

func (m *productsTUIModel) syncChoiceIndexesFromQuery() {
	m.sortIndex = 0
	for i, mode := range m.sortChoices {
		if mode == m.query.Sort {
			m.sortIndex = i
		}
	}
	m.query.Sort = m.sortChoices[m.sortIndex]

	m.skinTypeIndex = maxInt(0, indexOfStringFold(m.skinTypeChoices, m.query.SkinType))
	m.query.SkinType = m.skinTypeChoices[m.skinTypeIndex]

	m.categoryIndex = indexOfStringFold(m.categoryChoices, m.query.Category)
	if m.categoryIndex < 0 {
		m.categoryIndex = 0
	}
	m.query.Category = m.categoryChoices[m.categoryIndex]

	m.brandIndex = indexOfStringFold(m.brandChoices, m.query.Brand)
	if m.brandIndex < 0 {
		m.brandIndex = 0
	}
	m.query.Brand = m.brandChoices[m.brandIndex]

	m.limitIndex = indexOfInt(m.limitChoices, m.query.Limit)
	if m.limitIndex < 0 {
		m.limitIndex = 0
		m.query.Limit = m.limitChoices[m.limitIndex]
	}
}

// tuiChoice names an inline query setting cycled by a single key.
type tuiChoice int

const (
	choiceSort tuiChoice = iota
	choiceSkinType
	choiceCategory
	choiceBrand
	choiceLimit
)

var tuiChoiceKeys = map[string]tuiChoice{
	"s": choiceSort,
	"t": choiceSkinType,
	"c": choiceCategory,
	"B": choiceBrand,
	"l": choiceLimit,
}

func nextIndex(i, n int) int {
	if n == 0 {
		return 0
	}
	return (i + 1) % n
}

// cycle advances one setting to its next choice and re-runs the query.
func (m *productsTUIModel) cycle(c tuiChoice) {
	switch c {
	case choiceSort:
		if len(m.sortChoices) == 0 {
			return
		}
		m.sortIndex = nextIndex(m.sortIndex, len(m.sortChoices))
		m.query.Sort = m.sortChoices[m.sortIndex]
	case choiceSkinType:
		if len(m.skinTypeChoices) == 0 {
			return
		}
		m.skinTypeIndex = nextIndex(m.skinTypeIndex, len(m.skinTypeChoices))
		m.query.SkinType = m.skinTypeChoices[m.skinTypeIndex]
	case choiceCategory:
		if len(m.categoryChoices) == 0 {
			return
		}
		m.categoryIndex = nextIndex(m.categoryIndex, len(m.categoryChoices))
		m.query.Category = m.categoryChoices[m.categoryIndex]
	case choiceBrand:
		if len(m.brandChoices) == 0 {
			return
		}
		m.brandIndex = nextIndex(m.brandIndex, len(m.brandChoices))
		m.query.Brand = m.brandChoices[m.brandIndex]
	case choiceLimit:
		if len(m.limitChoices) == 0 {
			return
		}
		m.limitIndex = nextIndex(m.limitIndex, len(m.limitChoices))
		m.query.Limit = m.limitChoices[m.limitIndex]
	}
	m.applyCurrentQuery(false)
}

func (m productsTUIModel) activeQuerySummary() string {
	parts := []string{
		"skin:" + m.query.SkinType,
		"concerns:" + strings.Join(m.query.Concerns, ","),
	}
	if len(m.query.Avoid) > 0 {
		parts = append(parts, "avoid:"+strings.Join(m.query.Avoid, ","))
	}
	if m.query.Category != "" {
		parts = append(parts, "category:"+m.query.Category)
	}
	if m.query.Brand != "" {
		parts = append(parts, "brand:"+m.query.Brand)
	}
	parts = append(parts, "sort:"+string(m.query.Sort))
	if m.query.Limit > 0 {
		parts = append(parts, fmt.Sprintf("limit:%d", m.query.Limit))
	}
	if fuzzy := strings.TrimSpace(m.list.FilterValue()); fuzzy != "" {
		parts = append(parts, "fuzzy:"+fuzzy)
	}
	return strings.Join(parts, ", ")
}

func (m *productsTUIModel) applyCurrentQuery(resetSelection bool) {
	currentID := m.selectedID
	m.result = recommend.Recommend(m.catalog, m.query)
	shown := recommend.Present(m.result, m.query.Limit)
	m.visibleProducts = len(shown)

	items, starts := buildGroupedListItems(shown, m.result.Keywords)
	m.groupStarts = starts

	m.list.Title = fmt.Sprintf("%s • %d shown", humanizeLabel(m.result.Tier.String()), m.visibleProducts)
	m.list.SetItems(items)

	target := -1
	if !resetSelection && currentID != "" {
		target = findItemIndexByID(items, currentID)
	}
	if target < 0 {
		target = firstProductItemIndex(items)
	}
	if target < 0 && len(items) > 0 {
		target = 0
	}
	if target >= 0 {
		m.list.Select(target)
	}

	m.refreshDetail(true)
}

func (m *productsTUIModel) refreshDetail(resetScroll bool) {
	var content string
	nextID := ""

	if selected := m.list.SelectedItem(); selected != nil {
		switch item := selected.(type) {
		case tuiProductItem:
			content = renderProductDetailContent(item, m.result.Keywords, m.detail.Width)
			nextID = stableIDForProduct(item.product)
		case tuiGroupItem:
			content = m.renderGroupDetail(item)
			nextID = stableIDForGroup(item.name)
		}
	}
	if content == "" {
		content = m.result.Message + "\n\nTry another skin type (t), category (c) or brand (B), or press r to reset."
	}

	if resetScroll || nextID != m.selectedID {
		m.detail.GotoTop()
	}
	m.selectedID = nextID
	m.detail.SetContent(content)
}

func (m productsTUIModel) renderGroupDetail(group tuiGroupItem) string {
	preview := m.groupPreviewTitles(group.name, 5)

	lines := []string{
		tuiSectionStyle.Render(fmt.Sprintf("Category %d: %s", group.ordinal, group.name)),
		tuiMetaStyle.Render(fmt.Sprintf("%d products in this category", group.count)),
		"",
		tuiMetaStyle.Render("Jump keys:"),
		"- `]` next category, `[` previous category",
		"- `1..9` jump directly to category number",
	}
	if len(preview) > 0 {
		lines = append(lines, "")
		lines = append(lines, tuiMetaStyle.Render("Preview:"))
		for _, title := range preview {
			lines = append(lines, "• "+title)
		}
	}

	return strings.Join(lines, "\n")
}

func (m productsTUIModel) groupPreviewTitles(group string, max int) []string {
	out := make([]string, 0, max)
	for _, item := range m.list.Items() {
		p, ok := item.(tuiProductItem)
		if !ok || p.group != group {
			continue
		}
		out = append(out, p.title)
		if len(out) >= max {
			break
		}
	}
	return out
}

func (m *productsTUIModel) jumpToSection(index int) {
	if index < 0 || index >= len(m.groupStarts) {
		return
	}

	target := firstProductIndexFrom(m.list.Items(), m.groupStarts[index])
	if target < 0 {
		target = m.groupStarts[index]
	}
	m.list.Select(target)
	m.refreshDetail(true)
}

// jumpSection moves delta sections from the cursor's, wrapping around.
func (m *productsTUIModel) jumpSection(delta int) {
	n := len(m.groupStarts)
	if n == 0 {
		return
	}
	m.jumpToSection(((m.currentSectionIndex()+delta)%n + n) % n)
}

// currentSectionIndex is the section containing the cursor, or 0.
func (m productsTUIModel) currentSectionIndex() int {
	cursor := m.list.GlobalIndex()
	current := 0
	for i, start := range m.groupStarts {
		if start > cursor {
			break
		}
		current = i
	}
	return current
}

// buildGroupedListItems sections the ranked products by category. Sections
// appear in the order of their best-ranked product and keep rank order
// inside, so reading top to bottom never contradicts the ranking within a
// category.
func buildGroupedListItems(products []catalog.Product, keywords []string) (items []list.Item, starts []int) {
	if len(products) == 0 {
		return nil, nil
	}

	var order []string
	groups := map[string][]tuiProductItem{}
	for i, p := range products {
		group := productGroupLabel(p)
		if _, seen := groups[group]; !seen {
			order = append(order, group)
		}
		groups[group] = append(groups[group], buildTUIProductItem(p, i+1, group, keywords))
	}

	items = make([]list.Item, 0, len(products)+len(order))
	starts = make([]int, 0, len(order))
	for idx, name := range order {
		starts = append(starts, len(items))
		items = append(items, tuiGroupItem{
			name:    name,
			count:   len(groups[name]),
			ordinal: idx + 1,
		})
		for _, item := range groups[name] {
			items = append(items, item)
		}
	}
	return items, starts
}

func productGroupLabel(p catalog.Product) string {
	if category := strings.TrimSpace(p.Category); category != "" {
		return humanizeLabel(category)
	}
	return "Other"
}

func buildTUIProductItem(p catalog.Product, rank int, group string, keywords []string) tuiProductItem {
	title := fmt.Sprintf("%d. %s", rank, emptyIf(p.Name, "Unnamed product"))

	descParts := []string{fmt.Sprintf("★ %.1f", p.Rating)}
	if p.Brand != "" {
		descParts = append(descParts, p.Brand)
	}
	if matched := recommend.MatchedIngredients(p, keywords); len(matched) > 0 {
		descParts = append(descParts, fmt.Sprintf("%d match(es)", len(matched)))
	}

	filterTokens := []string{
		p.Name,
		p.Brand,
		p.Category,
		p.SkinType,
		strings.Join(p.Ingredients, " "),
		group,
	}

	return tuiProductItem{
		product:     p,
		rank:        rank,
		group:       group,
		title:       title,
		description: strings.Join(descParts, "  •  "),
		filterValue: strings.ToLower(strings.Join(filterTokens, " ")),
	}
}

func renderProductDetailContent(item tuiProductItem, keywords []string, width int) string {
	maxWidth := maxInt(24, width)
	p := item.product

	lines := []string{
		tuiProductStyle.Render(wrapText(emptyIf(p.Name, "Unnamed product"), maxWidth)),
		tuiMetaStyle.Render(wrapText(fmt.Sprintf("#%d  |  %s  |  %s", item.rank, emptyIf(p.Brand, "unknown brand"), emptyIf(p.Category, "uncategorized")), maxWidth)),
		"",
		fmt.Sprintf("%s %s", tuiMetaStyle.Render("Rating:"), tuiValueStyle.Render(fmt.Sprintf("%.1f", p.Rating))),
		fmt.Sprintf("%s %s", tuiMetaStyle.Render("Skin type:"), emptyIf(p.SkinType, catalog.SkinTypeAll)),
	}

	matched := recommend.MatchedIngredients(p, keywords)
	lines = append(lines, "")
	lines = append(lines, tuiMetaStyle.Render("Matching ingredients:"))
	if len(matched) == 0 {
		lines = append(lines, tuiMutedStyle.Render("none (concern named in category or product name)"))
	} else {
		lines = append(lines, tuiMatchStyle.Render(wrapText(strings.Join(matched, ", "), maxWidth)))
	}

	lines = append(lines, "")
	lines = append(lines, tuiMetaStyle.Render("Key ingredients:"))
	if len(p.Ingredients) == 0 {
		lines = append(lines, tuiMutedStyle.Render("not listed"))
	} else {
		lines = append(lines, wrapText(strings.Join(p.Ingredients, ", "), maxWidth))
	}

	if url := strings.TrimSpace(p.URL); url != "" {
		lines = append(lines, "")
		lines = append(lines, tuiMutedStyle.Render("URL:"))
		lines = append(lines, tuiMutedStyle.Render(wrapText(url, maxWidth)))
	}

	return strings.Join(lines, "\n")
}

func wrapText(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	if width < 12 {
		width = 12
	}

	line := words[0]
	lines := make([]string, 0, len(words)/6+1)
	for _, w := range words[1:] {
		if len(line)+1+len(w) > width {
			lines = append(lines, line)
			line = w
			continue
		}
		line += " " + w
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}

func canonicalizeTUIQuery(q recommend.Query) recommend.Query {
	q.SkinType = strings.ToLower(strings.TrimSpace(q.SkinType))
	if q.SkinType == "" {
		q.SkinType = catalog.SkinTypeAll
	}
	q.Sort = recommend.ParseSortMode(string(q.Sort))
	q.Category = strings.TrimSpace(q.Category)
	q.Brand = strings.TrimSpace(q.Brand)
	return q
}

func buildSkinTypeChoices(c *catalog.Catalog, current string) []string {
	counts := skinTypeCounts(c)
	values := make([]string, 0, len(counts)+2)
	for st := range counts {
		values = append(values, st)
	}
	sort.SliceStable(values, func(i, j int) bool {
		if counts[values[i]] != counts[values[j]] {
			return counts[values[i]] > counts[values[j]]
		}
		return values[i] < values[j]
	})
	values = append([]string{catalog.SkinTypeAll}, values...)
	if current != "" && indexOfStringFold(values, current) < 0 {
		values = append(values, current)
	}
	return values
}

// buildCountedChoices orders catalog values by product count, with "" (no
// filter) first. The current value is always included.
func buildCountedChoices(counts map[string]int, current string) []string {
	values := make([]string, 0, len(counts)+1)
	for value := range counts {
		values = append(values, value)
	}
	if current != "" && indexOfStringFold(values, current) < 0 {
		values = append(values, current)
	}
	sort.Strings(values)
	sort.SliceStable(values, func(i, j int) bool {
		left, right := counts[values[i]], counts[values[j]]
		if left != right {
			return left > right
		}
		return strings.ToLower(values[i]) < strings.ToLower(values[j])
	})
	return append([]string{""}, values...)
}

func buildLimitChoices(current int) []int {
	values := []int{5, 10, 25, 0}
	if current > 0 && indexOfInt(values, current) < 0 {
		values = append([]int{current}, values...)
	}
	return values
}

func indexOfStringFold(values []string, target string) int {
	for i, value := range values {
		if strings.EqualFold(value, target) {
			return i
		}
	}
	return -1
}

func indexOfInt(values []int, target int) int {
	for i, value := range values {
		if value == target {
			return i
		}
	}
	return -1
}

func findItemIndexByID(items []list.Item, stableID string) int {
	for i, item := range items {
		if stableIDForItem(item) == stableID {
			return i
		}
	}
	return -1
}

func firstProductItemIndex(items []list.Item) int {
	return firstProductIndexFrom(items, 0)
}

func firstProductIndexFrom(items []list.Item, start int) int {
	for i := start; i < len(items); i++ {
		if _, ok := items[i].(tuiProductItem); ok {
			return i
		}
	}
	return -1
}

func stableIDForItem(item list.Item) string {
	switch value := item.(type) {
	case tuiProductItem:
		return stableIDForProduct(value.product)
	case tuiGroupItem:
		return stableIDForGroup(value.name)
	default:
		return ""
	}
}

func stableIDForProduct(p catalog.Product) string {
	return "product:" + p.Key()
}

func stableIDForGroup(group string) string {
	return "group:" + strings.ToLower(strings.TrimSpace(group))
}

func humanizeLabel(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "Other"
	}
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")
	words := strings.Fields(strings.ToLower(s))
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
