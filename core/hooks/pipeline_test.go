// Copyright (C) 2024 Zenith Markets Ltd.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package hooks

import (
	"context"
	"testing"

	"code.zenithex.io/zenith/core/types"
	"code.zenithex.io/zenith/libs/num"
	"code.zenithex.io/zenith/logging"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubExtension counts invocations and lets each point's behaviour be
// overridden per test.
type stubExtension struct {
	calls map[Point]int

	beforePlace func(*types.Order) (*OrderDelta, error)
	beforeMatch func(taker, maker *types.Order) error
	feeOverride func(*types.Trade) (*FeeDelta, error)
	onCancel    func(*types.Order) error
}

func newStub() *stubExtension {
	return &stubExtension{calls: map[Point]int{}}
}

func (s *stubExtension) BeforePlace(_ context.Context, o *types.Order) (*OrderDelta, error) {
	s.calls[BeforePlace]++
	if s.beforePlace != nil {
		return s.beforePlace(o)
	}
	return nil, nil
}

func (s *stubExtension) AfterPlace(_ context.Context, _ *types.Order) error {
	s.calls[AfterPlace]++
	return nil
}

func (s *stubExtension) BeforeMatch(_ context.Context, taker, maker *types.Order) error {
	s.calls[BeforeMatch]++
	if s.beforeMatch != nil {
		return s.beforeMatch(taker, maker)
	}
	return nil
}

func (s *stubExtension) AfterMatch(_ context.Context, _ *types.Trade) error {
	s.calls[AfterMatch]++
	return nil
}

func (s *stubExtension) FeeOverride(_ context.Context, t *types.Trade) (*FeeDelta, error) {
	s.calls[FeeOverride]++
	if s.feeOverride != nil {
		return s.feeOverride(t)
	}
	return nil, nil
}

func (s *stubExtension) BeforeCancel(_ context.Context, o *types.Order) error {
	s.calls[BeforeCancel]++
	if s.onCancel != nil {
		return s.onCancel(o)
	}
	return nil
}

func (s *stubExtension) AfterCancel(_ context.Context, _ *types.Order) error {
	s.calls[AfterCancel]++
	return nil
}

func getTestPipeline(t *testing.T, ext Extension, perms Permissions) *Pipeline {
	t.Helper()
	p, err := NewPipeline(logging.NewTestLogger(), NewDefaultConfig(),
		&Descriptor{Extension: ext, Permissions: perms})
	require.NoError(t, err)
	return p
}

func testOrder() *types.Order {
	return &types.Order{
		ID:        num.NewUint(1),
		MarketID:  "BTC/USDT",
		Party:     "alice",
		Side:      types.SideBuy,
		Type:      types.OrderTypeLimit,
		Price:     num.NewUint(100),
		Size:      num.NewUint(10),
		Remaining: num.NewUint(10),
		Status:    types.OrderStatusActive,
	}
}

func TestPermissions_BitsAreIndependent(t *testing.T) {
	p := PermissionsFor(BeforePlace, FeeOverride)
	assert.True(t, p.Has(BeforePlace))
	assert.True(t, p.Has(FeeOverride))
	assert.False(t, p.Has(AfterPlace))
	assert.False(t, p.Has(BeforeCancel))

	all := AllPermissions()
	for pt := BeforePlace; pt < numPoints; pt++ {
		assert.True(t, all.Has(pt))
	}
}

func TestPipeline_NilDescriptorDispatchesNothing(t *testing.T) {
	p, err := NewPipeline(logging.NewTestLogger(), NewDefaultConfig(), nil)
	require.NoError(t, err)

	assert.False(t, p.Enabled(BeforePlace))
	delta, err := p.BeforePlace(context.Background(), testOrder())
	require.NoError(t, err)
	assert.Nil(t, delta)
	require.NoError(t, p.BeforeCancel(context.Background(), testOrder()))
}

func TestPipeline_RejectsPermissionsWithoutExtension(t *testing.T) {
	_, err := NewPipeline(logging.NewTestLogger(), NewDefaultConfig(),
		&Descriptor{Permissions: PermissionsFor(BeforePlace)})
	assert.ErrorIs(t, err, types.ErrInvalidHook)
}

func TestPipeline_UngrantedPointIsSkipped(t *testing.T) {
	ext := newStub()
	p := getTestPipeline(t, ext, PermissionsFor(AfterPlace))

	_, err := p.BeforePlace(context.Background(), testOrder())
	require.NoError(t, err)
	require.NoError(t, p.AfterPlace(context.Background(), testOrder()))

	assert.Zero(t, ext.calls[BeforePlace])
	assert.Equal(t, 1, ext.calls[AfterPlace])
}

func TestPipeline_GrantedPointDispatches(t *testing.T) {
	ext := newStub()
	ext.beforePlace = func(_ *types.Order) (*OrderDelta, error) {
		return &OrderDelta{Size: num.NewUint(5)}, nil
	}
	p := getTestPipeline(t, ext, AllPermissions())

	delta, err := p.BeforePlace(context.Background(), testOrder())
	require.NoError(t, err)
	require.NotNil(t, delta)
	assert.True(t, delta.Size.EQUint64(5))
}

func TestPipeline_ErrorSurfacesAsHookFailed(t *testing.T) {
	ext := newStub()
	ext.beforeMatch = func(_, _ *types.Order) error {
		return errors.New("extension says no")
	}
	p := getTestPipeline(t, ext, AllPermissions())

	err := p.BeforeMatch(context.Background(), testOrder(), testOrder())
	assert.ErrorIs(t, err, types.ErrHookFailed)
}

func TestPipeline_PanicIsRecoveredAsHookFailed(t *testing.T) {
	ext := newStub()
	ext.feeOverride = func(_ *types.Trade) (*FeeDelta, error) {
		panic("boom")
	}
	p := getTestPipeline(t, ext, AllPermissions())

	_, err := p.FeeOverride(context.Background(), &types.Trade{})
	assert.ErrorIs(t, err, types.ErrHookFailed)
}

func TestPipeline_CancelVetoPassesThrough(t *testing.T) {
	ext := newStub()
	ext.onCancel = func(_ *types.Order) error {
		return types.ErrCancelVetoed
	}
	p := getTestPipeline(t, ext, AllPermissions())

	err := p.BeforeCancel(context.Background(), testOrder())
	assert.ErrorIs(t, err, types.ErrCancelVetoed)
	assert.NotErrorIs(t, err, types.ErrHookFailed)
}
