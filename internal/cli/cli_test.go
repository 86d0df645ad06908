package cli

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/tgadmin/internal/config"
	"github.com/aretw0/tgadmin/internal/logging"
	"github.com/aretw0/tgadmin/internal/testutils"
	"github.com/aretw0/tgadmin/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedTransport replays events and records outbound messages.
type scriptedTransport struct {
	events []domain.Event

	mu   sync.Mutex
	sent []domain.OutboundMessage
	next int
}

func (s *scriptedTransport) Send(_ context.Context, _ int64, msg domain.OutboundMessage) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	s.next++
	return s.next, nil
}

func (s *scriptedTransport) Edit(_ context.Context, _ int64, _ int, msg domain.OutboundMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return nil
}

func (s *scriptedTransport) Listen(ctx context.Context, fn func(domain.Event)) error {
	for _, ev := range s.events {
		fn(ev)
	}
	<-ctx.Done()
	return nil
}

func (s *scriptedTransport) messages() []domain.OutboundMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.OutboundMessage(nil), s.sent...)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load(config.NewViper())
	require.NoError(t, err)
	return cfg
}

func TestRunManage_EditsDocument(t *testing.T) {
	path := testutils.WriteDocument(t, "app.json", `{"age": 25}`)
	transport := &scriptedTransport{events: []domain.Event{
		{Kind: domain.EventCommand, ChatID: 1, SenderID: 1, Command: "admin"},
		{Kind: domain.EventButton, ChatID: 1, SenderID: 1, MessageID: 1, Payload: "u/age"},
		{Kind: domain.EventText, ChatID: 1, SenderID: 1, Text: "26"},
	}}

	cfg := testConfig(t)
	cfg.Telegram.AdminList = []int64{1}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	var banner bytes.Buffer
	go func() {
		done <- RunManage(ctx, ManageOptions{
			Path:   path,
			Config: cfg,
			Banner: &banner,
			Logger: logging.NewNop(),
			NewTransport: func(*config.Config, *slog.Logger) (Transport, error) {
				return transport, nil
			},
		})
	}()

	require.Eventually(t, func() bool {
		data, err := os.ReadFile(path)
		return err == nil && bytes.Contains(data, []byte("26"))
	}, 3*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"age": 26}`, string(data))
	assert.NotEmpty(t, transport.messages())
	assert.Contains(t, banner.String(), path)
}

func TestRunManage_RequiresToken(t *testing.T) {
	path := testutils.WriteDocument(t, "app.yaml", "a: 1\n")
	err := RunManage(context.Background(), ManageOptions{Path: path, Config: testConfig(t), Logger: logging.NewNop()})
	assert.ErrorContains(t, err, "telegram.token")
}

func TestRunManage_BadDocument(t *testing.T) {
	path := testutils.WriteDocument(t, "app.ini", "a=1\n")
	err := RunManage(context.Background(), ManageOptions{
		Path:   path,
		Config: testConfig(t),
		Logger: logging.NewNop(),
		NewTransport: func(*config.Config, *slog.Logger) (Transport, error) {
			return &scriptedTransport{}, nil
		},
	})
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}

func TestCreateLocker(t *testing.T) {
	cfg := testConfig(t)
	locker, cleanup, err := createLocker(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	assert.Nil(t, locker)
	cleanup()

	mr := miniredis.RunT(t)
	cfg.Redis.Addr = mr.Addr()
	locker, cleanup, err = createLocker(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	require.NotNil(t, locker)
	defer cleanup()

	doc, err := createDocument(testutils.WriteDocument(t, "app.toml", "a = 1\n"), cfg, locker, logging.NewNop())
	require.NoError(t, err)
	assert.Equal(t, domain.FormatTOML, doc.Format())
}

func TestCreateLocker_Unreachable(t *testing.T) {
	cfg := testConfig(t)
	mr := miniredis.RunT(t)
	cfg.Redis.Addr = mr.Addr()
	mr.Close()

	_, _, err := createLocker(context.Background(), cfg, logging.NewNop())
	assert.ErrorContains(t, err, "failed to connect to redis")
}

func TestRunInspect(t *testing.T) {
	path := testutils.WriteDocument(t, "app.yaml", "server:\n  port: 80\ntags: [a, b]\n")

	var out bytes.Buffer
	require.NoError(t, RunInspect(InspectOptions{Path: path, Address: "/tags", Plain: true, Out: &out}))
	assert.Contains(t, out.String(), "# /tags")
	assert.Contains(t, out.String(), "`append`")

	out.Reset()
	require.NoError(t, RunInspect(InspectOptions{Path: path, Plain: true, Out: &out}))
	assert.Contains(t, out.String(), "{} server")

	assert.ErrorIs(t, RunInspect(InspectOptions{Path: path, Address: "/server/port", Plain: true, Out: &out}), domain.ErrAddressNotFound)
	assert.ErrorIs(t, RunInspect(InspectOptions{Path: path, Address: "tags", Plain: true, Out: &out}), domain.ErrMalformedPath)
}
