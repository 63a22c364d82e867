package ui

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"chat-client/internal/chat"
	"chat-client/internal/models"
)

// renderThread redraws the active conversation. Messages come out of
// the cache already sorted; this only groups them under day headers.
func (a *App) renderThread(key string) {
	coord := a.coordinator()
	if coord == nil {
		return
	}
	msgs := a.cache.Get(key)
	self := coord.SelfID()
	now := time.Now()

	var b strings.Builder
	lastDay := ""
	for _, msg := range msgs {
		if day := dayLabel(msg.Timestamp, now); day != lastDay {
			fmt.Fprintf(&b, "\n[%s]      --- %s ---[-]\n", "gray", day)
			lastDay = day
		}
		b.WriteString(messageLine(msg, self, a.client.FileURL))
	}
	a.chatView.SetText(b.String())
	a.chatView.ScrollToEnd()
}

func messageLine(msg models.Message, selfID string, fileURL func(string) string) string {
	color := "blue"
	name := "them"
	if msg.SenderID == selfID {
		color = "green"
		name = "you"
	}
	line := fmt.Sprintf("[%s]%s[-] [gray]%s[-]  %s", color, name, formatTime(msg.Timestamp), renderContent(msg, fileURL))
	if msg.Edited {
		line += " [gray](edited)[-]"
	}
	return line + "\n"
}

// onInputDone sends on Enter. The draft stays in the field when the
// send is rejected so nothing typed is lost.
func (a *App) onInputDone(key tcell.Key) {
	if key != tcell.KeyEnter {
		return
	}
	text := strings.TrimSpace(a.input.GetText())
	if text == "" {
		return
	}
	coord := a.coordinator()
	if coord == nil {
		return
	}
	active := coord.Active()
	if active == "" {
		a.setStatus("pick a contact first")
		return
	}
	if path, ok := strings.CutPrefix(text, "/file "); ok {
		a.setStatus("uploading...")
		go a.sendFile(active, strings.TrimSpace(path))
		a.input.SetText("")
		return
	}
	if replacement, ok := strings.CutPrefix(text, "/edit "); ok {
		go a.editLastMessage(active, strings.TrimSpace(replacement))
		a.input.SetText("")
		return
	}
	if text == "/del" {
		go a.deleteLastMessage(active)
		a.input.SetText("")
		return
	}
	if err := coord.SendMessage(active, text, models.MessageTypeText); err != nil {
		a.setStatus(sendFailure(err))
		return
	}
	a.input.SetText("")
}

// sendFile uploads the local file over REST and ships the returned
// descriptor through the websocket as a media message.
func (a *App) sendFile(key, path string) {
	coord := a.coordinator()
	if coord == nil {
		return
	}
	msgType := models.MessageTypeForPath(path)
	ctx, cancel := context.WithTimeout(context.Background(), 2*a.cfg.RequestTimeout)
	defer cancel()
	info, err := a.client.UploadFile(ctx, path, msgType)
	if err != nil {
		a.setStatus(fmt.Sprintf("[red]upload failed:[-] %v", err))
		return
	}
	content, err := models.EncodeFileContent(info)
	if err != nil {
		a.setStatus(fmt.Sprintf("[red]upload failed:[-] %v", err))
		return
	}
	if err := coord.SendMessage(key, content, msgType); err != nil {
		a.setStatus(sendFailure(err))
		return
	}
	a.setStatus(fmt.Sprintf("sent %s", info.OriginalName))
}

// lastOwnMessage finds the most recent message the local user sent in
// the conversation; ok is false for an empty or all-inbound thread.
func (a *App) lastOwnMessage(key string) (models.Message, bool) {
	coord := a.coordinator()
	if coord == nil {
		return models.Message{}, false
	}
	msgs := a.cache.Get(key)
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].SenderID == coord.SelfID() {
			return msgs[i], true
		}
	}
	return models.Message{}, false
}

// editLastMessage rewrites the local user's latest message in the
// active thread.
func (a *App) editLastMessage(key, replacement string) {
	if replacement == "" {
		a.setStatus("usage: /edit <new text>")
		return
	}
	msg, ok := a.lastOwnMessage(key)
	if !ok {
		a.setStatus("nothing of yours to edit here")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.RequestTimeout)
	defer cancel()
	updated, err := a.client.EditMessage(ctx, msg.ID, replacement)
	if err != nil {
		a.setStatus(fmt.Sprintf("[red]edit failed:[-] %v", err))
		return
	}
	a.cache.Update(key, updated)
}

// deleteLastMessage removes the local user's latest message in the
// active thread.
func (a *App) deleteLastMessage(key string) {
	msg, ok := a.lastOwnMessage(key)
	if !ok {
		a.setStatus("nothing of yours to delete here")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.RequestTimeout)
	defer cancel()
	if err := a.client.DeleteMessage(ctx, msg.ID); err != nil {
		a.setStatus(fmt.Sprintf("[red]delete failed:[-] %v", err))
		return
	}
	a.cache.Remove(key, msg.ID)
}

// markThreadRead sends read receipts for inbound messages not yet
// marked, best effort.
func (a *App) markThreadRead(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.RequestTimeout)
	defer cancel()
	for _, msg := range a.cache.Get(key) {
		if msg.SenderID != key || msg.Read {
			continue
		}
		if err := a.client.MarkRead(ctx, msg.ID); err != nil {
			log.Printf("mark read %s: %v", msg.ID, err)
			return
		}
		msg.Read = true
		a.cache.Update(key, msg)
	}
}

func sendFailure(err error) string {
	switch err {
	case chat.ErrNotConnected:
		return "[yellow]not connected[-], message kept as draft"
	case chat.ErrEmptyContent:
		return "nothing to send"
	}
	return fmt.Sprintf("[red]send failed:[-] %v", err)
}
