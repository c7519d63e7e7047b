package usecase

import (
	"log/slog"

	"github.com/Shauryasoni262/BusinessOps-Suite-sub001/server/domain"
)

// ProjectUsecase is the project-room broadcast gateway: additive
// subscriptions and one-way server-to-room fan-out of domain events. It holds
// no domain data of its own; the Emit methods are called by the suite's
// controllers after they commit a change.
type ProjectUsecase struct {
	registry *domain.Registry
	log      *slog.Logger
}

func NewProjectUsecase(registry *domain.Registry, log *slog.Logger) *ProjectUsecase {
	return &ProjectUsecase{registry: registry, log: log}
}

func (u *ProjectUsecase) Subscribe(sessionID, projectID string) error {
	if err := u.registry.JoinProject(sessionID, projectID); err != nil {
		return err
	}
	u.log.Debug("session subscribed to project", "session", sessionID, "project", projectID)
	return nil
}

func (u *ProjectUsecase) Unsubscribe(sessionID, projectID string) {
	u.registry.LeaveProject(sessionID, projectID)
	u.log.Debug("session unsubscribed from project", "session", sessionID, "project", projectID)
}

// Publish fans the payload out to every session subscribed to the project
// room. Publishing to an empty room is a silent no-op: broadcast is
// best-effort and stateless about consumer presence.
func (u *ProjectUsecase) Publish(projectID, event string, payload any) {
	delivered := u.registry.BroadcastProject(projectID, domain.NewProjectEvent(event, payload))
	u.log.Debug("project event published", "project", projectID, "event", event, "delivered", delivered)
}

func (u *ProjectUsecase) EmitProjectUpdate(projectID string, payload any) {
	u.Publish(projectID, domain.EventProjectUpdate, payload)
}

func (u *ProjectUsecase) EmitTaskUpdate(projectID, action string, payload any) {
	u.Publish(projectID, domain.ProjectEventName(domain.KindTask, action), payload)
}

func (u *ProjectUsecase) EmitMilestoneUpdate(projectID, action string, payload any) {
	u.Publish(projectID, domain.ProjectEventName(domain.KindMilestone, action), payload)
}

func (u *ProjectUsecase) EmitMemberUpdate(projectID, action string, payload any) {
	u.Publish(projectID, domain.ProjectEventName(domain.KindMember, action), payload)
}

func (u *ProjectUsecase) EmitFileUpdate(projectID, action string, payload any) {
	u.Publish(projectID, domain.ProjectEventName(domain.KindFile, action), payload)
}
