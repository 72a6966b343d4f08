package panels

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zappabad/marketrush/internal/market"
	"github.com/zappabad/marketrush/internal/portfolio"
	"github.com/zappabad/marketrush/tui/styles"
)

// TradeInputField represents the currently focused input field.
type TradeInputField int

const (
	FieldAsset TradeInputField = iota
	FieldAction
	FieldAmount
	FieldSubmit
)

// TradeInputPanel handles trade entry with ticker autocomplete.
type TradeInputPanel struct {
	assets      []market.Asset
	assetInput  textinput.Model
	amountInput textinput.Model

	// Dropdown state
	showDropdown     bool
	dropdownItems    []string
	dropdownFiltered []string
	dropdownIndex    int

	actionIndex int

	currentField  TradeInputField
	selectedAsset *market.Asset
	lastError     string

	focused bool
	width   int
	height  int
}

// NewTradeInputPanel creates a new trade input panel.
func NewTradeInputPanel(assets []market.Asset) *TradeInputPanel {
	tickers := make([]string, len(assets))
	for i, a := range assets {
		tickers[i] = a.Ticker
	}

	assetInput := textinput.New()
	assetInput.Placeholder = "Search ticker..."
	assetInput.Width = 15
	assetInput.CharLimit = 10

	amountInput := textinput.New()
	amountInput.Placeholder = "Units"
	amountInput.Width = 10
	amountInput.CharLimit = 15

	return &TradeInputPanel{
		assets:           assets,
		assetInput:       assetInput,
		amountInput:      amountInput,
		dropdownItems:    tickers,
		dropdownFiltered: tickers,
		currentField:     FieldAsset,
	}
}

// Init initializes the panel.
func (p *TradeInputPanel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the panel.
func (p *TradeInputPanel) Update(msg tea.Msg) (*TradeInputPanel, tea.Cmd) {
	if !p.focused {
		return p, nil
	}

	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("down"))):
			p.nextField()
			return p, nil

		case key.Matches(msg, key.NewBinding(key.WithKeys("up"))):
			p.prevField()
			return p, nil

		case key.Matches(msg, key.NewBinding(key.WithKeys("enter"))):
			if p.currentField == FieldSubmit {
				return p, p.submitTrade()
			}
			if p.showDropdown && p.currentField == FieldAsset {
				p.selectDropdownItem()
				p.showDropdown = false
			}
			p.nextField()
			return p, nil

		case key.Matches(msg, key.NewBinding(key.WithKeys("esc"))):
			p.showDropdown = false
			return p, nil

		case key.Matches(msg, key.NewBinding(key.WithKeys("left"))):
			if p.showDropdown {
				if p.dropdownIndex > 0 {
					p.dropdownIndex--
				}
				return p, nil
			}
			if p.currentField == FieldAction {
				if p.actionIndex > 0 {
					p.actionIndex--
				}
				return p, nil
			}

		case key.Matches(msg, key.NewBinding(key.WithKeys("right"))):
			if p.showDropdown {
				if p.dropdownIndex < len(p.dropdownFiltered)-1 {
					p.dropdownIndex++
				}
				return p, nil
			}
			if p.currentField == FieldAction {
				if p.actionIndex < len(portfolio.Actions)-1 {
					p.actionIndex++
				}
				return p, nil
			}
		}
	}

	switch p.currentField {
	case FieldAsset:
		p.assetInput, cmd = p.assetInput.Update(msg)
		p.filterDropdown(p.assetInput.Value())
		p.showDropdown = len(p.assetInput.Value()) > 0

	case FieldAmount:
		p.amountInput, cmd = p.amountInput.Update(msg)
	}

	return p, cmd
}

// View renders the panel.
func (p *TradeInputPanel) View() string {
	var content strings.Builder

	content.WriteString(p.renderField("Asset", FieldAsset, p.renderAssetField()))
	content.WriteString("\n")
	content.WriteString(p.renderField("Action", FieldAction, p.renderActionField()))
	content.WriteString("\n")
	content.WriteString(p.renderField("Units", FieldAmount, p.amountInput.View()))
	content.WriteString("\n\n")

	submitStyle := styles.InputStyle
	if p.currentField == FieldSubmit && p.focused {
		submitStyle = styles.FocusedInputStyle.Bold(true).Foreground(styles.PrimaryColor)
	}
	content.WriteString(submitStyle.Render("  [Execute Trade]  "))

	content.WriteString("\n\n")
	content.WriteString(p.renderSummary())
	if p.lastError != "" {
		content.WriteString("\n")
		content.WriteString(styles.ShortStyle.Render(p.lastError))
	}

	panelStyle := styles.PanelStyle
	if p.focused {
		panelStyle = styles.FocusedPanelStyle
	}

	title := styles.RenderTitle("📝 Trade", p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())

	return panelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}

func (p *TradeInputPanel) renderField(label string, field TradeInputField, inputView string) string {
	labelStyle := styles.LabelStyle
	if p.currentField == field && p.focused {
		labelStyle = labelStyle.Foreground(styles.PrimaryColor)
	}
	return labelStyle.Render(fmt.Sprintf("%-8s", label)) + inputView
}

func (p *TradeInputPanel) renderAssetField() string {
	var result strings.Builder

	inputStyle := styles.InputStyle
	if p.currentField == FieldAsset && p.focused {
		inputStyle = styles.FocusedInputStyle
		p.assetInput.Focus()
	} else {
		p.assetInput.Blur()
	}
	result.WriteString(inputStyle.Render(p.assetInput.View()))

	if p.showDropdown && len(p.dropdownFiltered) > 0 {
		result.WriteString("\n")
		for i, item := range p.dropdownFiltered {
			style := styles.DropdownItemStyle
			if i == p.dropdownIndex {
				style = styles.DropdownSelectedStyle
			}
			result.WriteString("         " + style.Render(p.highlightMatch(item, p.assetInput.Value())))
			if i < len(p.dropdownFiltered)-1 {
				result.WriteString("\n")
			}
		}
	}

	return result.String()
}

func (p *TradeInputPanel) renderActionField() string {
	var items []string
	for i, a := range portfolio.Actions {
		style := styles.DropdownItemStyle
		if i == p.actionIndex {
			if p.currentField == FieldAction && p.focused {
				style = styles.DropdownSelectedStyle
			} else {
				style = styles.DropdownItemStyle.Bold(true)
			}
			style = style.Foreground(actionColor(a))
		}
		items = append(items, style.Render(strings.ToUpper(a.String())))
	}
	return strings.Join(items, " | ")
}

func actionColor(a portfolio.Action) lipgloss.Color {
	if a == portfolio.ActionBuy || a == portfolio.ActionCover {
		return styles.UpColor
	}
	return styles.DownColor
}

func (p *TradeInputPanel) renderSummary() string {
	ticker := p.assetInput.Value()
	price := 0.0
	if p.selectedAsset != nil {
		ticker = p.selectedAsset.Ticker
		price = p.selectedAsset.Price
	}
	if ticker == "" {
		ticker = "---"
	}

	action := portfolio.Actions[p.actionIndex]
	parts := []string{
		lipgloss.NewStyle().Bold(true).Foreground(actionColor(action)).Render(strings.ToUpper(action.String())),
		ticker,
	}

	qty := p.amountInput.Value()
	if qty == "" {
		qty = "0"
	}
	parts = append(parts, "x"+qty)
	if amount, err := strconv.ParseFloat(qty, 64); err == nil && price > 0 {
		parts = append(parts, "≈ "+styles.FormatMoney(amount*price))
	}

	return styles.HeaderStyle.Render("Trade: ") + strings.Join(parts, " ")
}

func (p *TradeInputPanel) filterDropdown(query string) {
	query = strings.ToUpper(query)
	p.dropdownFiltered = nil
	p.dropdownIndex = 0

	for _, item := range p.dropdownItems {
		if strings.Contains(strings.ToUpper(item), query) {
			p.dropdownFiltered = append(p.dropdownFiltered, item)
		}
	}
}

func (p *TradeInputPanel) highlightMatch(item, query string) string {
	if query == "" {
		return item
	}

	idx := strings.Index(strings.ToUpper(item), strings.ToUpper(query))
	if idx == -1 {
		return item
	}

	return item[:idx] + styles.DropdownMatchStyle.Render(item[idx:idx+len(query)]) + item[idx+len(query):]
}

func (p *TradeInputPanel) selectDropdownItem() {
	if p.dropdownIndex < len(p.dropdownFiltered) {
		selected := p.dropdownFiltered[p.dropdownIndex]
		p.assetInput.SetValue(selected)

		for i, a := range p.assets {
			if a.Ticker == selected {
				p.selectedAsset = &p.assets[i]
				break
			}
		}
	}
}

func (p *TradeInputPanel) nextField() {
	p.showDropdown = false
	switch p.currentField {
	case FieldAsset:
		p.selectDropdownItem()
		p.currentField = FieldAction
		p.assetInput.Blur()
	case FieldAction:
		p.currentField = FieldAmount
		p.amountInput.Focus()
	case FieldAmount:
		p.currentField = FieldSubmit
		p.amountInput.Blur()
	case FieldSubmit:
		p.currentField = FieldAsset
		p.assetInput.Focus()
	}
}

func (p *TradeInputPanel) prevField() {
	p.showDropdown = false
	switch p.currentField {
	case FieldAsset:
		p.currentField = FieldSubmit
		p.assetInput.Blur()
	case FieldAction:
		p.currentField = FieldAsset
		p.assetInput.Focus()
	case FieldAmount:
		p.currentField = FieldAction
		p.amountInput.Blur()
	case FieldSubmit:
		p.currentField = FieldAmount
		p.amountInput.Focus()
	}
}

func (p *TradeInputPanel) submitTrade() tea.Cmd {
	if p.selectedAsset == nil {
		p.lastError = "pick an asset first"
		return nil
	}

	amount, err := strconv.ParseFloat(strings.TrimSpace(p.amountInput.Value()), 64)
	if err != nil || amount <= 0 {
		p.lastError = "units must be a positive number"
		return nil
	}
	p.lastError = ""

	msg := TradeSubmitMsg{
		Asset:  p.selectedAsset.ID,
		Action: portfolio.Actions[p.actionIndex],
		Amount: amount,
	}
	return func() tea.Msg { return msg }
}

// SetFocus sets the focus state of the panel.
func (p *TradeInputPanel) SetFocus(focused bool) {
	p.focused = focused
	if focused {
		switch p.currentField {
		case FieldAsset:
			p.assetInput.Focus()
		case FieldAmount:
			p.amountInput.Focus()
		}
	} else {
		p.assetInput.Blur()
		p.amountInput.Blur()
	}
}

// Editing reports whether keystrokes are going into a text field.
func (p *TradeInputPanel) Editing() bool {
	return p.focused && (p.currentField == FieldAsset || p.currentField == FieldAmount)
}

// SetSize sets the panel dimensions.
func (p *TradeInputPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetAssets refreshes the quotes used for the cost preview.
func (p *TradeInputPanel) SetAssets(assets []market.Asset) {
	p.assets = assets
	if p.selectedAsset != nil {
		for i, a := range p.assets {
			if a.ID == p.selectedAsset.ID {
				p.selectedAsset = &p.assets[i]
				break
			}
		}
	}
}

// SetAsset pre-fills the asset field.
func (p *TradeInputPanel) SetAsset(a market.Asset) {
	p.assetInput.SetValue(a.Ticker)
	p.selectedAsset = &a
}

// Reset clears the input fields.
func (p *TradeInputPanel) Reset() {
	p.assetInput.SetValue("")
	p.amountInput.SetValue("")
	p.selectedAsset = nil
	p.currentField = FieldAsset
	p.actionIndex = 0
	p.showDropdown = false
	p.lastError = ""
}

// TradeSubmitMsg is sent when a trade is submitted.
type TradeSubmitMsg struct {
	Asset  market.AssetID
	Action portfolio.Action
	Amount float64
}
