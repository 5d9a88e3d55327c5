package postgres

import (
	"cmp"
	"context"
	"fmt"
	"net"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/taller-api/pkg/config"
)

// NewPool crea el pool de conexiones. DATABASE_URL tiene prioridad sobre DB_HOST/DB_PORT/...
// Las conexiones TCP se marcan por IPv4 cuando el host lo permite; el nombre se conserva
// en la cadena de conexión para que TLS verifique el certificado.
func NewPool(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	dsn := cfg.DatabaseURL
	if dsn == "" {
		dsn = cfg.DSN()
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}

	poolConfig.ConnConfig.DialFunc = dialIPv4
	poolConfig.MaxConns = cmp.Or(max(cfg.MaxConns, 0), 25)
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	// NUMERIC <-> decimal.Decimal para montos de órdenes, ventas y pagos.
	poolConfig.AfterConnect = func(_ context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("crear pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping DB: %w", err)
	}
	return pool, nil
}

// fallbackResolver DNS público para hosts que el resolver del sistema solo publica en IPv6.
var fallbackResolver = &net.Resolver{
	PreferGo: true,
	Dial: func(ctx context.Context, _, _ string) (net.Conn, error) {
		var d net.Dialer
		return d.DialContext(ctx, "udp", "8.8.8.8:53")
	},
}

func dialIPv4(ctx context.Context, network, addr string) (net.Conn, error) {
	var d net.Dialer
	if network != "tcp" {
		return d.DialContext(ctx, network, addr)
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}
	ip, err := lookupIPv4(ctx, host)
	if err != nil {
		return d.DialContext(ctx, network, addr)
	}
	return d.DialContext(ctx, "tcp4", net.JoinHostPort(ip, port))
}

// lookupIPv4 devuelve la primera IPv4 de host: literal, resolver del sistema o fallbackResolver.
func lookupIPv4(ctx context.Context, host string) (string, error) {
	if ip := net.ParseIP(host); ip != nil {
		if ip.To4() == nil {
			return "", fmt.Errorf("%s no es IPv4", host)
		}
		return ip.String(), nil
	}
	var lastErr error
	for _, r := range []*net.Resolver{net.DefaultResolver, fallbackResolver} {
		ips, err := r.LookupIP(ctx, "ip4", host)
		if err != nil {
			lastErr = err
			continue
		}
		if len(ips) > 0 {
			return ips[0].String(), nil
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("%s sin dirección IPv4", host)
	}
	return "", lastErr
}
