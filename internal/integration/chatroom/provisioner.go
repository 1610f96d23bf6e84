package chatroom

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Provisioner выдаёт идентификатор чата для пары участников встречи
type Provisioner struct {
	prefix string
}

func NewProvisioner(prefix string) *Provisioner {
	if prefix == "" {
		prefix = "room"
	}
	return &Provisioner{prefix: prefix}
}

// ProvisionRoom создаёт новый идентификатор комнаты
func (p *Provisioner) ProvisionRoom(_ context.Context, a, b int64) (string, error) {
	if a <= 0 || b <= 0 {
		return "", fmt.Errorf("provision room: invalid participants %d, %d", a, b)
	}
	if a == b {
		return "", fmt.Errorf("provision room: participant %d cannot chat with self", a)
	}
	return p.prefix + "-" + uuid.NewString(), nil
}
