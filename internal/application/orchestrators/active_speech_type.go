package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	domainSheet "podium/internal/domain/sheet"
)

// Settings sheet layout. One row per setting, name in column 0 and value
// in column 1.
const (
	SettingsSheet         = "Settings"
	ActiveSpeechTypeKey   = "ActiveSpeechType"
	DefaultSpeechType     = "persuasive"
	settingsValueColIndex = 1
)

// SettingsHeaders returns the header row of the Settings sheet.
func SettingsHeaders() []string {
	return []string{"Setting", "Value"}
}

// ActiveSpeechTypeDeps holds dependencies for the active speech type operations.
type ActiveSpeechTypeDeps struct {
	Sheets SheetStore
}

// ExecuteGetActiveSpeechType returns the speech type evaluation forms are
// currently collecting for, seeding the Settings sheet with the default on
// first use.
// PRE: none
// POST: The Settings sheet exists and holds an ActiveSpeechType row
func ExecuteGetActiveSpeechType(ctx context.Context, deps ActiveSpeechTypeDeps) (string, error) {
	table, err := deps.Sheets.ReadAll(ctx, SettingsSheet)
	if errors.Is(err, domainSheet.ErrNotFound) {
		if err := deps.Sheets.Create(ctx, SettingsSheet, SettingsHeaders()); err != nil && !errors.Is(err, domainSheet.ErrAlreadyExists) {
			return "", err
		}
		if err := deps.Sheets.Append(ctx, SettingsSheet, []string{ActiveSpeechTypeKey, DefaultSpeechType}); err != nil {
			return "", err
		}
		slog.Info("settings_event", "event", "settings_seeded", "active_speech_type", DefaultSpeechType)
		return DefaultSpeechType, nil
	}
	if err != nil {
		return "", err
	}

	if row := findSettingRow(table, ActiveSpeechTypeKey); row != -1 {
		if v := strings.TrimSpace(table.Cell(row, settingsValueColIndex)); v != "" {
			return v, nil
		}
		// Row exists with a blank value; fill it in place so it does not
		// keep shadowing an appended default.
		if err := deps.Sheets.UpdateCell(ctx, SettingsSheet, row, settingsValueColIndex, DefaultSpeechType); err != nil {
			return "", err
		}
		return DefaultSpeechType, nil
	}

	// Sheet exists but the setting row is absent; seed the default.
	if err := deps.Sheets.Append(ctx, SettingsSheet, []string{ActiveSpeechTypeKey, DefaultSpeechType}); err != nil {
		return "", err
	}
	return DefaultSpeechType, nil
}

// SetActiveSpeechTypeInput carries the new active speech type.
type SetActiveSpeechTypeInput struct {
	SpeechType string
}

// ExecuteSetActiveSpeechType changes the speech type evaluation forms
// collect for. The Settings row is updated in place, or appended when the
// sheet has no ActiveSpeechType row yet.
// PRE: SpeechType is non-empty after trimming
// POST: The Settings sheet holds the new value
func ExecuteSetActiveSpeechType(ctx context.Context, input SetActiveSpeechTypeInput, deps ActiveSpeechTypeDeps) error {
	speechType := strings.TrimSpace(input.SpeechType)
	if speechType == "" {
		return errors.New("speech type is required")
	}

	table, err := deps.Sheets.ReadAll(ctx, SettingsSheet)
	if errors.Is(err, domainSheet.ErrNotFound) {
		if err := deps.Sheets.Create(ctx, SettingsSheet, SettingsHeaders()); err != nil && !errors.Is(err, domainSheet.ErrAlreadyExists) {
			return err
		}
		if err := deps.Sheets.Append(ctx, SettingsSheet, []string{ActiveSpeechTypeKey, speechType}); err != nil {
			return err
		}
		slog.Info("settings_event", "event", "active_speech_type_set", "speech_type", speechType)
		return nil
	}
	if err != nil {
		return err
	}

	if row := findSettingRow(table, ActiveSpeechTypeKey); row != -1 {
		if err := deps.Sheets.UpdateCell(ctx, SettingsSheet, row, settingsValueColIndex, speechType); err != nil {
			return err
		}
	} else if err := deps.Sheets.Append(ctx, SettingsSheet, []string{ActiveSpeechTypeKey, speechType}); err != nil {
		return err
	}

	slog.Info("settings_event", "event", "active_speech_type_set", "speech_type", speechType)
	return nil
}

// findSettingRow returns the index of the row naming the setting, or -1.
func findSettingRow(table domainSheet.Table, key string) int {
	for i := range table.Rows {
		if strings.EqualFold(strings.TrimSpace(table.Cell(i, 0)), key) {
			return i
		}
	}
	return -1
}
