package ui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"chat-client/internal/api"
	"chat-client/internal/chat"
	"chat-client/internal/config"
	"chat-client/internal/models"
	"chat-client/internal/store"
	"chat-client/internal/ws"
)

const (
	pageAuth   = "auth"
	pageMain   = "main"
	pageSearch = "search"
)

// App is the terminal frontend. It owns the widgets and a per-session
// coordinator; stores and the connection manager are shared across
// logins and handed in by main.
type App struct {
	cfg      config.Config
	app      *tview.Application
	pages    *tview.Pages
	client   *api.Client
	sessions *store.SessionStore
	cache    *store.Conversations
	presence *store.Presence
	manager  *ws.Manager

	mu     sync.Mutex
	coord  *chat.Coordinator
	users  []models.User
	unread map[string]int

	contacts  *tview.List
	chatView  *tview.TextView
	input     *tview.InputField
	statusBar *tview.TextView
}

// NewApp builds the widget tree and subscribes to store and connection
// events. Subscriptions are registered once here; the session-scoped
// coordinator is swapped underneath them on login and logout.
func NewApp(cfg config.Config, client *api.Client, sessions *store.SessionStore, cache *store.Conversations, presence *store.Presence, manager *ws.Manager) *App {
	a := &App{
		cfg:      cfg,
		app:      tview.NewApplication(),
		pages:    tview.NewPages(),
		client:   client,
		sessions: sessions,
		cache:    cache,
		presence: presence,
		manager:  manager,
		unread:   map[string]int{},
	}
	a.buildMainPage()
	a.buildAuthPage()
	a.buildSearchPage()

	manager.OnEvent(func(evt models.Event) {
		if c := a.coordinator(); c != nil {
			c.HandleEvent(evt)
		}
	})
	manager.OnReady(func(userID string) {
		a.setStatus(fmt.Sprintf("[green]connected[-] as %s", userID))
	})
	manager.OnClosed(func() {
		if manager.State() == ws.StateIdle {
			a.setStatus(colorTag(ColorError) + "disconnected[-]")
			return
		}
		a.setStatus("[yellow]disconnected[-], retrying...")
	})
	manager.OnError(func(err error) {
		if errors.Is(err, ws.ErrTokenExpired) {
			a.queue(func() { a.endSession("session expired, sign in again") })
			return
		}
		a.setStatus(fmt.Sprintf("%sconnection error:[-] %v", colorTag(ColorError), err))
	})
	cache.OnChange(func(key string, kind store.ChangeKind) {
		a.queue(func() { a.onConversationChange(key, kind) })
	})
	presence.OnChange(func() {
		a.queue(func() { a.refreshContacts() })
	})
	client.SetUnauthorizedHook(func() {
		if a.coordinator() != nil {
			a.queue(func() { a.endSession("session expired, sign in again") })
		}
	})
	return a
}

// Run restores a persisted session when the stored token is still valid,
// otherwise starts at the sign-in form. Blocks until the UI exits.
func (a *App) Run() error {
	sess, err := a.sessions.Load()
	if err != nil {
		log.Printf("discarding saved session: %v", err)
	}
	if sess != nil && !sess.TokenExpired(time.Now()) {
		a.startSession(sess.User)
	} else {
		if sess != nil {
			_ = a.sessions.Clear()
		}
		a.pages.SwitchToPage(pageAuth)
	}
	return a.app.SetRoot(a.pages, true).EnableMouse(true).Run()
}

// Stop ends the UI event loop.
func (a *App) Stop() {
	a.app.Stop()
}

func (a *App) coordinator() *chat.Coordinator {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.coord
}

// startSession builds a coordinator for the authenticated user, opens
// the websocket, and moves to the main page.
func (a *App) startSession(user models.User) {
	coord := chat.NewCoordinator(user.ID, a.client, a.manager, a.cache, a.presence, a.cfg.HistoryPageSize)
	coord.OnStatus(func(msg string) { a.setStatus(msg) })

	a.mu.Lock()
	a.coord = coord
	a.unread = map[string]int{}
	a.mu.Unlock()

	a.manager.Connect(a.sessions.Token())
	a.pages.SwitchToPage(pageMain)
	a.app.SetFocus(a.contacts)
	a.setStatus("connecting...")
	go a.loadUsers()
	go a.refreshProfile()
}

// refreshProfile re-fetches the authenticated user's own record. A
// restored session may carry a stale display name, and a dead token
// surfaces here as a 401 through the unauthorized hook.
func (a *App) refreshProfile() {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.RequestTimeout)
	defer cancel()
	user, err := a.client.Me(ctx)
	if err != nil {
		log.Printf("profile refresh: %v", err)
		return
	}
	if err := a.sessions.Set(store.Session{User: user, Token: a.sessions.Token()}); err != nil {
		log.Printf("profile refresh: %v", err)
	}
}

// endSession tears the session down and returns to the sign-in form.
// Safe to call twice; the second call is a no-op.
func (a *App) endSession(notice string) {
	a.mu.Lock()
	coord := a.coord
	a.coord = nil
	a.users = nil
	a.unread = map[string]int{}
	a.mu.Unlock()
	if coord == nil {
		return
	}
	coord.Teardown()
	if err := a.sessions.Clear(); err != nil {
		log.Printf("clearing session: %v", err)
	}
	a.contacts.Clear()
	a.chatView.Clear()
	a.input.SetText("")
	a.pages.SwitchToPage(pageAuth)
	a.setStatus(notice)
}

// logout also tells the backend, best effort.
func (a *App) logout() {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.RequestTimeout)
	defer cancel()
	if err := a.client.Logout(ctx); err != nil {
		log.Printf("logout: %v", err)
	}
	a.endSession("signed out")
}

// loadUsers fetches the contact list and seeds live presence from the
// fetch-time online flags.
func (a *App) loadUsers() {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.RequestTimeout)
	defer cancel()
	users, err := a.client.ListUsers(ctx)
	if err != nil {
		a.setStatus(fmt.Sprintf("[red]could not load contacts:[-] %v", err))
		return
	}
	var online []string
	for _, u := range users {
		if u.Online {
			online = append(online, u.ID)
		}
	}
	a.mu.Lock()
	a.users = users
	a.mu.Unlock()
	a.presence.Reset(online)
	a.queue(func() { a.refreshContacts() })
}

// onConversationChange re-renders the thread when the active
// conversation changed. Only live arrivals count as unread elsewhere;
// a history load completing for a backgrounded conversation is not
// news.
func (a *App) onConversationChange(key string, kind store.ChangeKind) {
	coord := a.coordinator()
	if coord == nil {
		return
	}
	if coord.Active() == key {
		a.renderThread(key)
		return
	}
	if kind != store.ChangeMerge {
		return
	}
	a.mu.Lock()
	a.unread[key]++
	a.mu.Unlock()
	a.refreshContacts()
}

func (a *App) setStatus(msg string) {
	a.queue(func() { a.statusBar.SetText(" " + msg) })
}

// queue schedules fn on the UI goroutine. tview widgets are not safe to
// touch from store or websocket callbacks directly.
func (a *App) queue(fn func()) {
	go a.app.QueueUpdateDraw(fn)
}

// DebugState is exposed on the debug HTTP server.
func (a *App) DebugState() map[string]any {
	a.mu.Lock()
	coord := a.coord
	userCount := len(a.users)
	a.mu.Unlock()

	state := map[string]any{
		"connection":    a.manager.State().String(),
		"conversations": a.cache.Keys(),
		"online":        a.presence.Snapshot(),
		"users":         userCount,
	}
	if coord != nil {
		state["self"] = coord.SelfID()
		state["active"] = coord.Active()
	}
	return state
}

// rootInputCapture handles the global key bindings on the main page.
func (a *App) rootInputCapture(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyCtrlL:
		a.logout()
		return nil
	case tcell.KeyCtrlF:
		a.openSearch()
		return nil
	case tcell.KeyTab:
		if a.app.GetFocus() == a.contacts {
			a.app.SetFocus(a.input)
		} else {
			a.app.SetFocus(a.contacts)
		}
		return nil
	}
	return event
}
