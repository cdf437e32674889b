package telegram

import (
	"sync"
	"testing"
	"time"

	"autofilter/sources/deduplication"
	"autofilter/sources/tracing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
)

type fakeReplier struct {
	mu      sync.Mutex
	replies []string
}

func (x *fakeReplier) Reply(log *tracing.Logger, msg *tgbotapi.Message, text string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.replies = append(x.replies, text)
}

func (x *fakeReplier) SendDocument(log *tracing.Logger, msg *tgbotapi.Message, name string, payload []byte) {
}

func (x *fakeReplier) texts() []string {
	x.mu.Lock()
	defer x.mu.Unlock()
	return append([]string(nil), x.replies...)
}

type fakeSweepRunner struct {
	release chan struct{}
	total   int
	err     error
}

func (x *fakeSweepRunner) Run(log *tracing.Logger, threshold float64, limit int) (int, error) {
	<-x.release
	return x.total, x.err
}

func TestDupesCommandFindDoesNotBlockMessageHandling(t *testing.T) {
	diplomat := &fakeReplier{}
	runner := &fakeSweepRunner{release: make(chan struct{}), total: 3}
	handler := &TelegramHandler{diplomat: diplomat, runner: runner}
	msg := &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1}}
	log := tracing.NewConsoleLogger()

	returned := make(chan struct{})
	go func() {
		handler.DupesCommandFind(log, msg, 0, 0)
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("command waited for the sweep to finish")
	}

	assert.Equal(t, []string{MsgDetectionStarted}, diplomat.texts())

	close(runner.release)
	assert.Eventually(t, func() bool {
		return len(diplomat.texts()) == 2
	}, time.Second, 10*time.Millisecond)
	assert.Contains(t, diplomat.texts()[1], "3 duplicate groups")
}

func TestDupesCommandFindReportsBusySweep(t *testing.T) {
	diplomat := &fakeReplier{}
	runner := &fakeSweepRunner{release: make(chan struct{}), err: deduplication.ErrDetectionBusy}
	handler := &TelegramHandler{diplomat: diplomat, runner: runner}
	msg := &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1}}

	close(runner.release)
	handler.DupesCommandFind(tracing.NewConsoleLogger(), msg, 0, 0)

	assert.Eventually(t, func() bool {
		texts := diplomat.texts()
		return len(texts) == 2 && texts[1] == MsgDetectionBusy
	}, time.Second, 10*time.Millisecond)
}
