package tui

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/orchestrated-app/hub/internal/tui/client"
	"github.com/orchestrated-app/hub/internal/tui/model"
	"github.com/orchestrated-app/hub/internal/tui/views"
	"github.com/rivo/tview"
)

const refreshEvery = 2 * time.Second

// App is the main TUI application shell.
type App struct {
	app       *tview.Application
	pages     *tview.Pages
	vm        *model.ViewModel
	statusBar *views.StatusBar
	convList  *views.ConversationList
	msgView   *views.MessageView
	suggBar   *views.SuggestionBar
	composer  *views.Composer
	calendar  *views.CalendarView
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewApp creates the TUI application.
func NewApp(c *client.Client, profile string) *App {
	ctx, cancel := context.WithCancel(context.Background())
	vm := model.NewViewModel(c)

	a := &App{
		app:       tview.NewApplication(),
		pages:     tview.NewPages(),
		vm:        vm,
		statusBar: views.NewStatusBar(),
		convList:  views.NewConversationList(),
		msgView:   views.NewMessageView(),
		suggBar:   views.NewSuggestionBar(),
		composer:  views.NewComposer(),
		calendar:  views.NewCalendarView(),
		ctx:       ctx,
		cancel:    cancel,
	}

	a.statusBar.SetProfile(profile)
	a.setupCallbacks()
	a.setupLayout()

	return a
}

func (a *App) setupCallbacks() {
	a.convList.SetSelectedFunc(func(row, col int) {
		id := a.convList.SelectedConversation()
		if id != "" {
			a.openConversation(id)
		}
	})

	a.composer.SetOnSend(func(text string) {
		go func() {
			if err := a.vm.Send(a.ctx, text); err != nil {
				a.vm.Flash.Set("Send failed: "+err.Error(), 5*time.Second)
			}
			a.app.QueueUpdateDraw(func() {
				a.msgView.Update(a.vm.GetMessages())
				a.statusBar.SetFlash(a.vm.Flash.Get())
			})
		}()
	})
}

func (a *App) setupLayout() {
	thread := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.msgView, 0, 1, false).
		AddItem(a.suggBar, 5, 0, false).
		AddItem(a.composer, 1, 0, false)

	inbox := tview.NewFlex().
		AddItem(a.convList, 0, 1, true).
		AddItem(thread, 0, 2, false)

	a.pages.AddPage("messages", inbox, true, true)
	a.pages.AddPage("calendar", a.calendar, true, false)

	root := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.statusBar, 1, 0, false)

	a.app.SetRoot(root, true)

	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		currentPage, _ := a.pages.GetFrontPage()

		// Let text input widgets handle all keys normally.
		focused := a.app.GetFocus()
		if _, ok := focused.(*tview.InputField); ok {
			if event.Key() == tcell.KeyEscape {
				a.app.SetFocus(a.convList)
				return nil
			}
			return event
		}

		if event.Key() != tcell.KeyRune {
			return event
		}

		switch event.Rune() {
		case 'q':
			a.app.Stop()
			return nil
		case 'c':
			a.switchView("calendar")
			return nil
		case 'm':
			a.switchView("messages")
			return nil
		case 'i':
			if currentPage == "messages" {
				a.app.SetFocus(a.composer.InputField)
				return nil
			}
		case 'r':
			if currentPage == "messages" {
				a.regenerate()
				return nil
			}
		case '1', '2', '3':
			if currentPage == "messages" {
				if text := a.suggBar.Pick(int(event.Rune() - '0')); text != "" {
					a.composer.SetText(text)
					a.app.SetFocus(a.composer.InputField)
				}
				return nil
			}
		}

		return event
	})
}

func (a *App) openConversation(id string) {
	go func() {
		if err := a.vm.SelectConversation(a.ctx, id); err != nil {
			a.vm.Flash.Set("Select failed: "+err.Error(), 5*time.Second)
			return
		}
		_ = a.vm.LoadSuggestions(a.ctx)
		a.app.QueueUpdateDraw(func() {
			if conv := a.vm.ActiveConversation(); conv != nil {
				a.msgView.SetContactName(conv.ContactName)
			}
			a.msgView.Update(a.vm.GetMessages())
			a.suggBar.Update(a.vm.GetSuggestions())
		})
	}()
}

// switchView flips both the daemon's sync view and the visible page.
func (a *App) switchView(view string) {
	go func() {
		if err := a.vm.SetView(a.ctx, view); err != nil {
			a.vm.Flash.Set("View switch failed: "+err.Error(), 5*time.Second)
			return
		}
		if view == "calendar" {
			_ = a.vm.LoadEvents(a.ctx)
		}
		a.app.QueueUpdateDraw(func() {
			a.pages.SwitchToPage(view)
			if view == "calendar" {
				a.calendar.Update(a.vm.GetEvents())
				a.app.SetFocus(a.calendar)
			} else {
				a.app.SetFocus(a.convList)
			}
		})
	}()
}

func (a *App) regenerate() {
	go func() {
		if err := a.vm.Regenerate(a.ctx); err != nil {
			a.vm.Flash.Set("Regenerate failed: "+err.Error(), 5*time.Second)
		}
		a.app.QueueUpdateDraw(func() {
			a.suggBar.Update(a.vm.GetSuggestions())
			a.statusBar.SetFlash(a.vm.Flash.Get())
		})
	}()
}

// Run starts the TUI application.
func (a *App) Run() error {
	go func() {
		_ = a.vm.LoadStatus(a.ctx)
		_ = a.vm.LoadConversations(a.ctx)
		_ = a.vm.LoadMessages(a.ctx)
		_ = a.vm.LoadSuggestions(a.ctx)

		a.app.QueueUpdateDraw(func() {
			a.convList.Update(a.vm.GetConversations())
			a.msgView.Update(a.vm.GetMessages())
			a.suggBar.Update(a.vm.GetSuggestions())
			if conv := a.vm.ActiveConversation(); conv != nil {
				a.msgView.SetContactName(conv.ContactName)
			}
			if s := a.vm.GetStatus(); s != nil {
				a.statusBar.SetState(s.State)
			}
		})

		a.startRefreshLoop()
	}()

	return a.app.Run()
}

func (a *App) startRefreshLoop() {
	ticker := time.NewTicker(refreshEvery)
	go func() {
		for {
			select {
			case <-ticker.C:
				_ = a.vm.LoadStatus(a.ctx)
				currentPage, _ := a.pages.GetFrontPage()
				if currentPage == "calendar" {
					_ = a.vm.LoadEvents(a.ctx)
				} else {
					_ = a.vm.LoadConversations(a.ctx)
					_ = a.vm.LoadMessages(a.ctx)
					_ = a.vm.LoadSuggestions(a.ctx)
				}
				a.app.QueueUpdateDraw(func() {
					if currentPage == "calendar" {
						a.calendar.Update(a.vm.GetEvents())
					} else {
						a.convList.Update(a.vm.GetConversations())
						a.msgView.Update(a.vm.GetMessages())
						a.suggBar.Update(a.vm.GetSuggestions())
					}
					if s := a.vm.GetStatus(); s != nil {
						a.statusBar.SetState(s.State)
					}
					a.statusBar.SetFlash(a.vm.Flash.Get())
				})
			case <-a.ctx.Done():
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop gracefully shuts down the TUI.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}
