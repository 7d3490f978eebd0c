package platform

import (
	"context"

	"github.com/rolelink/rolelink/internal/model"
)

// Disconnected is the MembershipSource used while the gateway feature is
// disabled. Every lookup fails, so reconciliation keeps prior levels
// instead of demoting everyone on a missing bot token.
type Disconnected struct{}

var _ MembershipSource = Disconnected{}

func (Disconnected) Membership(ctx context.Context, tag model.IdentityTag) ([]model.GroupID, error) {
	return nil, model.ErrGatewayClosed
}
