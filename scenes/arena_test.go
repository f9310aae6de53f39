package scenes

import (
	"testing"
	"time"

	cfg "github.com/bastionworks/ironclad-mp/config"
	"github.com/bastionworks/ironclad-mp/network"
)

// Editing the config package must change engine behavior; the scene threads
// every tuning section into the registry rather than leaving it on defaults.
func TestArenaSceneThreadsConfigIntoRegistry(t *testing.T) {
	origSync := cfg.Sync
	origReconcile := cfg.Reconcile
	origProjectile := cfg.Projectile
	defer func() {
		cfg.Sync = origSync
		cfg.Reconcile = origReconcile
		cfg.Projectile = origProjectile
	}()

	cfg.Sync.StaleAfter = 123 * time.Millisecond
	cfg.Sync.RateHighRTT = 0.07
	cfg.Reconcile.HardThreshold = 9.5
	cfg.Reconcile.IgnoreBand = 0.33
	cfg.Reconcile.RejoinWindow = 11 * time.Second
	cfg.Projectile.MaxLifetime = 17 * time.Second

	scene := NewArenaScene(nil, network.NewClient())
	opts := scene.registry.Options()

	if opts.Interp.StaleAfter != 123*time.Millisecond {
		t.Errorf("StaleAfter = %v, want the configured 123ms", opts.Interp.StaleAfter)
	}
	if opts.Interp.RateHighRTT != 0.07 {
		t.Errorf("RateHighRTT = %v, want the configured 0.07", opts.Interp.RateHighRTT)
	}
	if opts.Reconcile.HardThreshold != 9.5 {
		t.Errorf("HardThreshold = %v, want the configured 9.5", opts.Reconcile.HardThreshold)
	}
	if opts.Reconcile.IgnoreBand != 0.33 {
		t.Errorf("IgnoreBand = %v, want the configured 0.33", opts.Reconcile.IgnoreBand)
	}
	if opts.RejoinWindow != 11*time.Second {
		t.Errorf("RejoinWindow = %v, want the configured 11s", opts.RejoinWindow)
	}
	if opts.Projectile.MaxLifetime != 17*time.Second {
		t.Errorf("MaxLifetime = %v, want the configured 17s", opts.Projectile.MaxLifetime)
	}
}
