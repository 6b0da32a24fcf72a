package detail

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/rshade/shelfview/internal/i18n"
)

// KeyMap holds the view's bindings. Help text is translated once at
// construction.
type KeyMap struct {
	Delete  key.Binding
	Confirm key.Binding
	Cancel  key.Binding
	Retry   key.Binding
	Close   key.Binding
	Quit    key.Binding
}

// NewKeyMap builds the default bindings with help text from tr.
func NewKeyMap(tr i18n.Translator) KeyMap {
	return KeyMap{
		Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", tr(i18n.MsgDelete))),
		Confirm: key.NewBinding(key.WithKeys("y", "enter"), key.WithHelp("y/enter", tr(i18n.MsgConfirm))),
		Cancel:  key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n/esc", tr(i18n.MsgCancel))),
		Retry:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", tr(i18n.MsgRetry))),
		Close:   key.NewBinding(key.WithKeys("esc", "q"), key.WithHelp("esc/q", tr(i18n.MsgClose))),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c")),
	}
}

// ShortHelp implements help.KeyMap. Disabled bindings are skipped by the
// help view, so the line follows the current state.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Confirm, k.Cancel, k.Retry, k.Delete, k.Close}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// sync enables the bindings that apply to phase and del.
func (k *KeyMap) sync(phase Phase, del DeleteState) {
	confirming := del == DeleteConfirmPending
	open := phase != PhaseClosed

	k.Confirm.SetEnabled(open && confirming)
	k.Cancel.SetEnabled(open && confirming)
	k.Delete.SetEnabled(open && !confirming)
	k.Retry.SetEnabled(open && !confirming && phase == PhaseFailed)
	k.Close.SetEnabled(open && !confirming)
}
