package detector_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omriShneor/whatsapp_eventer/internal/detector"
	"github.com/omriShneor/whatsapp_eventer/internal/evaluation"
)

func TestDetectEvents_Idempotent(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Jerusalem")
	require.NoError(t, err)
	now := time.Date(2024, 1, 10, 9, 30, 0, 0, loc)
	d := detector.New(detector.Options{
		Now:      func() time.Time { return now },
		Location: loc,
	})

	for _, tc := range evaluation.MustLoadCorpus().All() {
		t.Run(tc.Name, func(t *testing.T) {
			first := d.DetectEvents(tc.Conversation)
			second := d.DetectEvents(tc.Conversation)
			assert.Equal(t, first, second)
		})
	}
}
