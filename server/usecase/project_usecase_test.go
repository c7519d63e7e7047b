package usecase

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Shauryasoni262/BusinessOps-Suite-sub001/server/domain"
)

func newProjectGateway(t *testing.T) (*ProjectUsecase, *domain.Registry) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := domain.NewRegistry()
	return NewProjectUsecase(registry, log), registry
}

func subscriber(t *testing.T, registry *domain.Registry, id string) chan domain.Event {
	t.Helper()
	out := make(chan domain.Event, 16)
	require.NoError(t, registry.Connect(domain.NewSession(id), out))
	return out
}

func nextEvent(t *testing.T, out chan domain.Event) domain.Event {
	t.Helper()
	select {
	case event := <-out:
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return domain.Event{}
	}
}

func TestPublishToEmptyProjectRoomIsNoOp(t *testing.T) {
	projects, _ := newProjectGateway(t)

	// must complete without error and without side effects
	projects.EmitTaskUpdate("p1", "created", map[string]string{"id": "t1"})
}

func TestPublishFansOutToSubscribers(t *testing.T) {
	projects, registry := newProjectGateway(t)
	outA := subscriber(t, registry, "a")
	outB := subscriber(t, registry, "b")
	require.NoError(t, projects.Subscribe("a", "p1"))
	require.NoError(t, projects.Subscribe("b", "p1"))

	payload := map[string]string{"id": "t1", "title": "ship it"}
	projects.EmitTaskUpdate("p1", "created", payload)

	for _, out := range []chan domain.Event{outA, outB} {
		event := nextEvent(t, out)
		require.Equal(t, "task:created", event.Name)
		require.Equal(t, payload, event.Data)
	}
}

func TestPublishScopedToProject(t *testing.T) {
	projects, registry := newProjectGateway(t)
	outA := subscriber(t, registry, "a")
	outB := subscriber(t, registry, "b")
	require.NoError(t, projects.Subscribe("a", "p1"))
	require.NoError(t, projects.Subscribe("b", "p2"))

	projects.EmitMilestoneUpdate("p1", "updated", nil)

	require.Equal(t, "milestone:updated", nextEvent(t, outA).Name)
	require.Empty(t, outB)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	projects, registry := newProjectGateway(t)
	out := subscriber(t, registry, "a")
	require.NoError(t, projects.Subscribe("a", "p1"))

	projects.Unsubscribe("a", "p1")
	projects.EmitFileUpdate("p1", "deleted", nil)

	require.Empty(t, out)

	// unsubscribing twice is a no-op
	projects.Unsubscribe("a", "p1")
}

func TestSubscriptionsAreAdditive(t *testing.T) {
	projects, registry := newProjectGateway(t)
	out := subscriber(t, registry, "a")
	require.NoError(t, projects.Subscribe("a", "p1"))
	require.NoError(t, projects.Subscribe("a", "p2"))

	projects.EmitProjectUpdate("p1", map[string]string{"name": "alpha"})
	projects.EmitMemberUpdate("p2", "created", map[string]string{"user": "u1"})

	require.Equal(t, domain.EventProjectUpdate, nextEvent(t, out).Name)
	require.Equal(t, "member:created", nextEvent(t, out).Name)
}

func TestSubscribeUnknownSessionFails(t *testing.T) {
	projects, _ := newProjectGateway(t)
	require.Error(t, projects.Subscribe("ghost", "p1"))
}
