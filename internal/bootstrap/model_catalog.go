package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"video-subtitle/internal/domain"
	"video-subtitle/internal/jobs"
)

var modelCatalog = []domain.ModelOption{
	{
		ID:          "tiny",
		Name:        "Tiny (Multilingual)",
		FileName:    "ggml-tiny.bin",
		SizeLabel:   "~75 MB",
		Description: "Fastest multilingual model.",
	},
	{
		ID:          "base",
		Name:        "Base (Multilingual)",
		FileName:    "ggml-base.bin",
		SizeLabel:   "~142 MB",
		Description: "Balanced speed/quality, multilingual.",
	},
	{
		ID:          "small",
		Name:        "Small (Multilingual)",
		FileName:    "ggml-small.bin",
		SizeLabel:   "~466 MB",
		Description: "Higher quality multilingual model.",
	},
	{
		ID:          "medium-q8_0",
		Name:        "Medium (Quantized)",
		FileName:    "ggml-medium-q8_0.bin",
		SizeLabel:   "~823 MB",
		Description: "Default model: medium quality at reduced size.",
	},
	{
		ID:          "medium",
		Name:        "Medium (Multilingual)",
		FileName:    "ggml-medium.bin",
		SizeLabel:   "~1.5 GB",
		Description: "High quality multilingual model.",
	},
	{
		ID:          "large-v3",
		Name:        "Large v3",
		FileName:    "ggml-large-v3.bin",
		SizeLabel:   "~2.9 GB",
		Description: "Latest large multilingual model.",
	},
	{
		ID:          "large-v3-turbo",
		Name:        "Large v3 Turbo",
		FileName:    "ggml-large-v3-turbo.bin",
		SizeLabel:   "~1.6 GB",
		Description: "Faster large-v3 variant.",
	},
}

// GetModelCatalog returns built-in model presets with download markers
// resolved against the local cache.
func (a *App) GetModelCatalog() []domain.ModelOption {
	options := make([]domain.ModelOption, len(modelCatalog))
	copy(options, modelCatalog)

	for i := range options {
		desc := a.Models.Describe(options[i].FileName)
		options[i].Downloaded = desc.Present
		if desc.Present {
			options[i].LocalPath = desc.LocalPath
		}
	}
	return options
}

// DownloadModel fetches the selected preset into the cache and makes it
// the configured model. Progress is published on the event bus.
func (a *App) DownloadModel(modelID string) (domain.Settings, error) {
	id := strings.TrimSpace(modelID)
	if id == "" {
		return domain.Settings{}, fmt.Errorf("model id is required")
	}

	option, found := modelByID(id)
	if !found {
		return domain.Settings{}, fmt.Errorf("unknown model id: %s", id)
	}

	_, err := a.Models.Ensure(context.Background(), option.FileName, func(p domain.DownloadProgress) {
		fraction := 0.0
		if p.Total > 0 {
			fraction = float64(p.Downloaded) / float64(p.Total)
		}
		a.publishEvent(jobs.Event{
			Kind:     domain.ProgressStage,
			Stage:    "model_download",
			Fraction: fraction,
		})
	})
	if err != nil {
		return domain.Settings{}, fmt.Errorf("download model %s: %w", option.Name, err)
	}

	settings, err := a.Store.Load()
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	settings.Model = option.FileName
	if err := a.Store.Save(settings); err != nil {
		return domain.Settings{}, fmt.Errorf("save settings: %w", err)
	}
	return settings, nil
}

func modelByID(id string) (domain.ModelOption, bool) {
	for _, option := range modelCatalog {
		if option.ID == id {
			return option, true
		}
	}
	return domain.ModelOption{}, false
}
