package ticket

import (
	"context"
	"time"
)

// RunSweeper ejecuta ExpireStale cada interval hasta que ctx se cancele.
func (uc *UseCase) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	uc.log.Info().Dur("interval", interval).Msg("barrido de tickets vencidos activo")
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := uc.ExpireStale(ctx, 0)
			if err != nil {
				uc.log.Error().Err(err).Msg("barrido de tickets")
			}
			if n > 0 {
				uc.log.Info().Int("expired", n).Msg("tickets vencidos liberados")
			}
		}
	}
}
