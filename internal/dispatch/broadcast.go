package dispatch

import "log/slog"

// Broadcaster fans one event out to many users, best effort: each target is
// attempted independently and a failed or missing session never stops the
// rest. Callers get a delivery count, not an error.
type Broadcaster struct {
	Reg *Registry
	Log *slog.Logger
}

func NewBroadcaster(reg *Registry, log *slog.Logger) *Broadcaster {
	return &Broadcaster{Reg: reg, Log: log}
}

func (b *Broadcaster) Broadcast(userIDs []string, event string, data any) int {
	delivered := 0
	for _, id := range userIDs {
		if err := b.Reg.Send(id, event, data); err != nil {
			if b.Log != nil {
				b.Log.Debug("push skipped", "user_id", id, "event", event, "error", err)
			}
			continue
		}
		delivered++
	}
	return delivered
}
