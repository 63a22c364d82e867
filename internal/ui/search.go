package ui

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"chat-client/internal/models"
)

// buildSearchPage assembles the contact search overlay: a query field
// on top of a result list.
func (a *App) buildSearchPage() {
	results := tview.NewList().ShowSecondaryText(true)
	var found []models.User

	query := tview.NewInputField().SetLabel(" Search: ").SetFieldWidth(0)
	query.SetDoneFunc(func(key tcell.Key) {
		switch key {
		case tcell.KeyEscape:
			a.closeSearch()
		case tcell.KeyEnter:
			q := query.GetText()
			if q == "" {
				return
			}
			go a.runSearch(q, results, &found)
		}
	})

	results.SetSelectedFunc(func(index int, _, _ string, _ rune) {
		if index < 0 || index >= len(found) {
			return
		}
		user := found[index]
		a.closeSearch()
		a.adoptContact(user)
	})
	results.SetDoneFunc(func() { a.app.SetFocus(query) })

	box := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(query, 1, 0, true).
		AddItem(results, 0, 1, false)
	box.SetBorder(true).SetTitle(" Find people ").SetTitleColor(ColorTitle).SetBorderColor(ColorBorder)

	a.pages.AddPage(pageSearch, center(box, 60, 20), true, false)
}

func (a *App) openSearch() {
	a.pages.ShowPage(pageSearch)
}

func (a *App) closeSearch() {
	a.pages.HidePage(pageSearch)
	a.app.SetFocus(a.contacts)
}

func (a *App) runSearch(q string, results *tview.List, found *[]models.User) {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.RequestTimeout)
	defer cancel()
	users, err := a.client.SearchUsers(ctx, q)
	if err != nil {
		a.setStatus(fmt.Sprintf("[red]search failed:[-] %v", err))
		return
	}
	a.queue(func() {
		*found = users
		results.Clear()
		for _, u := range users {
			results.AddItem(contactLine(u, a.presence.IsOnline(u.ID), 0), "  "+u.Username, 0, nil)
		}
		if len(users) == 0 {
			a.setStatus("no users matched")
			return
		}
		a.app.SetFocus(results)
	})
}

// adoptContact makes sure a searched-for user shows in the contact list
// and opens the conversation with them.
func (a *App) adoptContact(user models.User) {
	a.mu.Lock()
	index := -1
	for i, u := range a.users {
		if u.ID == user.ID {
			index = i
			break
		}
	}
	if index == -1 {
		a.users = append(a.users, user)
		index = len(a.users) - 1
	}
	a.mu.Unlock()

	a.refreshContacts()
	a.contacts.SetCurrentItem(index)
	a.selectContact(index)
}
