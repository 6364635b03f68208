package universe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orbitarium-server/internal/shared/config"
)

func newTestService(u *Universe) *Service {
	return NewService(u, config.SimulationConfig{
		FrameRate:       30,
		DefaultSimSpeed: 1,
		StartRunning:    false,
	})
}

func TestServiceStepAdvancesTime(t *testing.T) {
	u, _, _, _, _ := buildSystem(t)
	svc := newTestService(u)

	svc.Step(3600)
	svc.Step(-600)

	assert.InDelta(t, 3000.0, svc.Info().Time, 1e-9)
}

func TestServiceApplySettings(t *testing.T) {
	u, _, _, _, _ := buildSystem(t)
	svc := newTestService(u)

	speed := 86400.0
	running := true
	policy := KeepPosition
	simTime := 12345.0

	err := svc.ApplySettings(Settings{
		SimSpeed: &speed,
		Running:  &running,
		MuPolicy: &policy,
		Time:     &simTime,
	})
	require.NoError(t, err)

	info := svc.Info()
	assert.Equal(t, speed, info.SimSpeed)
	assert.True(t, info.Running)
	assert.Equal(t, KeepPosition, svc.MuPolicy())
	assert.InDelta(t, simTime, info.Time, 1e-9)
}

func TestServiceApplySettingsRejectsBadValues(t *testing.T) {
	u, _, _, _, _ := buildSystem(t)
	svc := newTestService(u)

	bad := MuPolicy("keep_everything")
	assert.Error(t, svc.ApplySettings(Settings{MuPolicy: &bad}))

	g := -1.0
	assert.Error(t, svc.ApplySettings(Settings{G: &g}))
}

func TestServiceApplySettingsGChangeResyncsMu(t *testing.T) {
	u, sunID, earthID, _, _ := buildSystem(t)
	svc := newTestService(u)

	newG := DefaultG * 2
	require.NoError(t, svc.ApplySettings(Settings{G: &newG}))

	earth := u.GetBody(earthID)
	sun := u.GetBody(sunID)
	assert.InDelta(t, newG*sun.Body.Mass, earth.Body.Orbit.GravitationalParameter(), 1e-3)
}

func TestServiceReset(t *testing.T) {
	u, _, _, _, _ := buildSystem(t)
	svc := newTestService(u)
	svc.Step(1000)

	fresh := New()
	svc.Reset(fresh)

	info := svc.Info()
	assert.Equal(t, 0, info.BodyCount)
	assert.Zero(t, info.Time)
}

func TestServiceReadWriteSeeSameUniverse(t *testing.T) {
	u, _, _, lunaID, _ := buildSystem(t)
	svc := newTestService(u)

	err := svc.Write(func(u *Universe) error {
		u.RemoveBody(lunaID)
		return nil
	})
	require.NoError(t, err)

	err = svc.Read(func(u *Universe) error {
		assert.Nil(t, u.GetBody(lunaID))
		return nil
	})
	require.NoError(t, err)
}
