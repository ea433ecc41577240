package ui

import (
	"context"

	"github.com/Mshel/waypoint/internal/demo"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
)

type Screen int

const (
	IntroScreen Screen = iota
	SetupScreen
	SearchScreen
	HistoryScreen
)

// Messages for state transitions
type IntroSubmitMsg IntroChoice
type SetupSubmitMsg struct {
	Config demo.Config
}
type BackToIntroMsg struct{}

// Options wires the persistence side of the UI. Both fields may be nil.
type Options struct {
	Recorder demo.Recorder
	History  HistoryReader
	Logger   *log.Logger
}

type ControllerModel struct {
	CurrentScreen Screen

	IntroModel   tea.Model
	SetupModel   tea.Model
	SearchModel  tea.Model
	HistoryModel tea.Model

	ScreenWidth  int
	ScreenHeight int

	ctx        context.Context
	options    Options
	stopSearch context.CancelFunc
}

// NewControllerModel builds the root model. Searches started from it stop
// when ctx is done.
func NewControllerModel(ctx context.Context, options Options, screenWidth int, screenHeight int) ControllerModel {
	if options.Logger == nil {
		options.Logger = log.Default()
	}
	return ControllerModel{
		CurrentScreen: IntroScreen,

		IntroModel: NewIntroModel(screenWidth, screenHeight),
		SetupModel: NewSetupModel(demo.DefaultConfig(), screenWidth, screenHeight),

		ScreenWidth:  screenWidth,
		ScreenHeight: screenHeight,

		ctx:        ctx,
		options:    options,
		stopSearch: func() {},
	}
}

func (m ControllerModel) Init() tea.Cmd {
	return m.IntroModel.Init()
}

func (m ControllerModel) View() string {
	switch m.CurrentScreen {
	case IntroScreen:
		return m.IntroModel.View()
	case SetupScreen:
		return m.SetupModel.View()
	case SearchScreen:
		if m.SearchModel != nil {
			return m.SearchModel.View()
		}
		return "Search Loading..."
	case HistoryScreen:
		if m.HistoryModel != nil {
			return m.HistoryModel.View()
		}
		return "History Loading..."
	default:
		return "Unknown Screen"
	}
}

func (m ControllerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok {
		// q is typed into the setup form, ctrl+c always quits
		if msg.String() == "ctrl+c" || (msg.String() == "q" && m.CurrentScreen != SetupScreen) {
			m.stopSearch()
			return m, tea.Quit
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ScreenWidth = msg.Width
		m.ScreenHeight = msg.Height
		m.IntroModel, _ = m.IntroModel.Update(msg)
		m.SetupModel, _ = m.SetupModel.Update(msg)
		if m.SearchModel != nil {
			m.SearchModel, _ = m.SearchModel.Update(msg)
		}
		if m.HistoryModel != nil {
			m.HistoryModel, _ = m.HistoryModel.Update(msg)
		}
		return m, nil

	case IntroSubmitMsg:
		switch IntroChoice(msg) {
		case InteractiveChoice:
			m.CurrentScreen = SetupScreen
			m.SetupModel = NewSetupModel(demo.DefaultConfig(), m.ScreenWidth, m.ScreenHeight)
			return m, m.SetupModel.Init()
		case DemoChoice:
			return m.startSearch(demo.DemoConfig())
		case HistoryChoice:
			m.CurrentScreen = HistoryScreen
			m.HistoryModel = NewHistoryModel(m.options.History, m.ScreenWidth, m.ScreenHeight)
			return m, m.HistoryModel.Init()
		}

	case SetupSubmitMsg:
		return m.startSearch(msg.Config)

	case BackToIntroMsg:
		m.stopSearch()
		m.stopSearch = func() {}
		m.SearchModel = nil
		m.CurrentScreen = IntroScreen
		return m, m.IntroModel.Init()

	default:
		switch m.CurrentScreen {
		case IntroScreen:
			m.IntroModel, cmd = m.IntroModel.Update(msg)
			cmds = append(cmds, cmd)
		case SetupScreen:
			m.SetupModel, cmd = m.SetupModel.Update(msg)
			cmds = append(cmds, cmd)
		case SearchScreen:
			if m.SearchModel != nil {
				m.SearchModel, cmd = m.SearchModel.Update(msg)
				cmds = append(cmds, cmd)
			}
		case HistoryScreen:
			if m.HistoryModel != nil {
				m.HistoryModel, cmd = m.HistoryModel.Update(msg)
				cmds = append(cmds, cmd)
			}
		}
	}

	return m, tea.Batch(cmds...)
}

// startSearch launches a Manager loop for cfg and switches to the search
// screen.
func (m ControllerModel) startSearch(cfg demo.Config) (tea.Model, tea.Cmd) {
	manager, err := demo.NewManager(cfg, m.options.Recorder, m.options.Logger)
	if err != nil {
		m.options.Logger.Error("Could not start search", "error", err)
		return m, nil
	}

	m.stopSearch()
	ctx, cancel := context.WithCancel(m.ctx)
	m.stopSearch = cancel

	m.CurrentScreen = SearchScreen
	m.SearchModel = NewSearchModel(manager, m.ScreenWidth, m.ScreenHeight)
	go manager.StartLoop(ctx)
	return m, m.SearchModel.Init()
}
