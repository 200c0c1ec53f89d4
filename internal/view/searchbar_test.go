package view

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoArmGo/CuratAI/internal/core/ports"
	"github.com/GoArmGo/CuratAI/internal/domain"
	"github.com/GoArmGo/CuratAI/internal/notify"
)

type fakeTranscriber struct {
	available bool
	text      string
	err       error
}

func (f *fakeTranscriber) Available() bool { return f.available }

func (f *fakeTranscriber) Transcribe(context.Context) (string, error) { return f.text, f.err }

func TestSearchBar_SubmitClearsQuery(t *testing.T) {
	var got []string
	bar := NewSearchBar(nil, &notify.Recorder{}, func(q string) error {
		got = append(got, q)
		return nil
	})

	require.NoError(t, bar.Submit())
	bar.SetQuery("   ")
	require.NoError(t, bar.Submit())
	assert.Empty(t, got)

	bar.SetQuery("beach")
	require.NoError(t, bar.Submit())
	assert.Equal(t, []string{"beach"}, got)
	assert.Empty(t, bar.Query())
}

func TestSearchBar_VoiceUnsupportedNotifiesOnce(t *testing.T) {
	rec := &notify.Recorder{}
	bar := NewSearchBar(&fakeTranscriber{}, rec, func(string) error { return nil })

	assert.False(t, bar.VoiceEnabled())
	assert.ErrorIs(t, bar.Voice(context.Background(), true), domain.ErrUnsupported)
	assert.ErrorIs(t, bar.Voice(context.Background(), true), domain.ErrUnsupported)

	assert.Equal(t, []string{"Voice recognition is not supported"}, rec.Messages(ports.LevelError))
}

func TestSearchBar_VoiceAutoSubmit(t *testing.T) {
	var got []string
	bar := NewSearchBar(&fakeTranscriber{available: true, text: " dogs on the beach "}, &notify.Recorder{}, func(q string) error {
		got = append(got, q)
		return nil
	})

	require.True(t, bar.VoiceEnabled())
	require.NoError(t, bar.Voice(context.Background(), true))
	assert.Equal(t, []string{"dogs on the beach"}, got)
	assert.False(t, bar.Recording())
}

func TestSearchBar_VoiceWithoutSubmitFillsQuery(t *testing.T) {
	called := false
	bar := NewSearchBar(&fakeTranscriber{available: true, text: "sunset"}, &notify.Recorder{}, func(string) error {
		called = true
		return nil
	})

	require.NoError(t, bar.Voice(context.Background(), false))
	assert.Equal(t, "sunset", bar.Query())
	assert.False(t, called)
}

func TestSearchBar_VoiceFailure(t *testing.T) {
	rec := &notify.Recorder{}
	bar := NewSearchBar(&fakeTranscriber{available: true, err: errors.New("mic busy")}, rec, func(string) error { return nil })

	require.Error(t, bar.Voice(context.Background(), true))
	assert.Contains(t, rec.Messages(ports.LevelError), "Voice recognition failed. Please try again.")
	assert.True(t, bar.VoiceEnabled())
}
