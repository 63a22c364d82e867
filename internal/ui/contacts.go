package ui

import (
	"context"
	"fmt"

	"github.com/rivo/tview"

	"chat-client/internal/models"
)

// buildMainPage lays out the contact list, the thread view, the input
// line, and the status bar.
func (a *App) buildMainPage() {
	a.contacts = tview.NewList().ShowSecondaryText(true)
	a.contacts.SetSelectedBackgroundColor(ColorHighlight)
	a.contacts.SetSelectedTextColor(ColorBg)
	a.contacts.SetBackgroundColor(ColorBg)
	a.contacts.SetBorder(true).SetTitle(" Contacts ").SetTitleColor(ColorTitle).SetBorderColor(ColorBorder)
	a.contacts.SetSelectedFunc(func(index int, _, _ string, _ rune) {
		a.selectContact(index)
	})

	a.chatView = tview.NewTextView().SetDynamicColors(true).SetWordWrap(true).SetScrollable(true)
	a.chatView.SetBackgroundColor(ColorBg)
	a.chatView.SetBorder(true).SetBorderColor(ColorBorder)

	a.input = tview.NewInputField().SetLabel(" > ").SetFieldWidth(0)
	a.input.SetFieldBackgroundColor(ColorBg)
	a.input.SetFieldTextColor(ColorFg)
	a.input.SetDoneFunc(a.onInputDone)

	a.statusBar = tview.NewTextView().SetDynamicColors(true)
	a.statusBar.SetTextColor(ColorFg)

	right := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.chatView, 0, 1, false).
		AddItem(a.input, 1, 0, true)

	body := tview.NewFlex().
		AddItem(a.contacts, 32, 0, true).
		AddItem(right, 0, 1, false)

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(body, 0, 1, true).
		AddItem(a.statusBar, 1, 0, false)
	layout.SetInputCapture(a.rootInputCapture)

	a.pages.AddPage(pageMain, layout, true, false)
}

// refreshContacts redraws the list, keeping the current selection.
func (a *App) refreshContacts() {
	a.mu.Lock()
	users := a.users
	unread := map[string]int{}
	for k, v := range a.unread {
		unread[k] = v
	}
	a.mu.Unlock()

	selected := a.contacts.GetCurrentItem()
	a.contacts.Clear()
	for _, u := range users {
		a.contacts.AddItem(contactLine(u, a.presence.IsOnline(u.ID), unread[u.ID]), "  "+u.Username, 0, nil)
	}
	if selected >= 0 && selected < a.contacts.GetItemCount() {
		a.contacts.SetCurrentItem(selected)
	}
}

func contactLine(u models.User, online bool, unread int) string {
	dot := colorTag(ColorOffline) + "○[-]"
	if online {
		dot = colorTag(ColorOnline) + "●[-]"
	}
	line := fmt.Sprintf("%s [%s]%s[-] %s", dot, avatarColor(u.ID), initials(u.Name()), tviewTitle(u.Name()))
	if unread > 0 {
		line += fmt.Sprintf(" [red](%d)[-]", unread)
	}
	return line
}

func tviewTitle(s string) string {
	return tview.Escape(s)
}

// selectContact activates the conversation with the chosen user.
func (a *App) selectContact(index int) {
	a.mu.Lock()
	if index < 0 || index >= len(a.users) {
		a.mu.Unlock()
		return
	}
	user := a.users[index]
	delete(a.unread, user.ID)
	a.mu.Unlock()

	coord := a.coordinator()
	if coord == nil {
		return
	}
	coord.Activate(context.Background(), user.ID)
	a.chatView.SetTitle(fmt.Sprintf(" %s ", user.Name()))
	a.renderThread(user.ID)
	go a.markThreadRead(user.ID)
	a.refreshContacts()
	a.app.SetFocus(a.input)
}
