package shell

import (
	"fmt"

	"psbrowse/internal/config"
	"psbrowse/internal/host"
	"psbrowse/internal/logger"
	"psbrowse/internal/normalize"
	"psbrowse/internal/services"
	"psbrowse/pkg/pstypes"
)

// Services holds the initialized services the browser front ends draw on.
type Services struct {
	Theme     *services.ThemeService
	Markdown  *services.MarkdownService
	Render    *services.RenderService
	Browser   *services.BrowserService
	Clipboard *services.ClipboardService
	Diff      *services.DiffService
}

// InitializeServices registers every psbrowse service in the global registry,
// initializes them in registration order and applies the render settings.
func InitializeServices(cfg *config.Config, connector host.Connector) (*Services, error) {
	registry := services.GetGlobalRegistry()

	theme := services.NewThemeService()
	if err := register(registry, theme); err != nil {
		return nil, err
	}
	markdown := services.NewMarkdownService(cfg.Render.Style, cfg.Render.Width)
	if err := register(registry, markdown); err != nil {
		return nil, err
	}
	if err := register(registry, services.NewRenderService(theme, markdown)); err != nil {
		return nil, err
	}
	normalizer := normalize.New(cfg.NormalizeOptions())
	if err := register(registry, services.NewBrowserService(connector, normalizer, cfg.Host.Timeout)); err != nil {
		return nil, err
	}
	if err := register(registry, services.NewClipboardService()); err != nil {
		return nil, err
	}
	if err := register(registry, services.NewDiffService()); err != nil {
		return nil, err
	}

	if err := registry.InitializeAll(); err != nil {
		return nil, err
	}

	svc, err := lookupServices()
	if err != nil {
		return nil, err
	}

	if err := svc.Theme.SetActive(services.ResolveThemeName(cfg.Render.Style)); err != nil {
		logger.Warn("Unknown render style, keeping default theme", "style", cfg.Render.Style, "error", err)
	}
	svc.Render.SetPlain(cfg.Render.Plain)

	logger.Debug("Services initialized", "theme", services.ResolveThemeName(cfg.Render.Style), "plain", svc.Render.IsPlain())
	return svc, nil
}

func register(registry *services.Registry, service pstypes.Service) error {
	if err := registry.RegisterService(service); err != nil {
		return fmt.Errorf("failed to register %s service: %w", service.Name(), err)
	}
	logger.ServiceOperation(service.Name(), "register")
	return nil
}

func lookupServices() (*Services, error) {
	var (
		svc Services
		err error
	)
	if svc.Theme, err = services.GetGlobalThemeService(); err != nil {
		return nil, err
	}
	if svc.Markdown, err = services.GetGlobalMarkdownService(); err != nil {
		return nil, err
	}
	if svc.Render, err = services.GetGlobalRenderService(); err != nil {
		return nil, err
	}
	if svc.Browser, err = services.GetGlobalBrowserService(); err != nil {
		return nil, err
	}
	if svc.Clipboard, err = services.GetGlobalClipboardService(); err != nil {
		return nil, err
	}
	if svc.Diff, err = services.GetGlobalDiffService(); err != nil {
		return nil, err
	}
	return &svc, nil
}
