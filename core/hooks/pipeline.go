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

	"code.zenithex.io/zenith/core/types"
	"code.zenithex.io/zenith/logging"

	"github.com/pkg/errors"
)

const namedLogger = "hooks"

// Pipeline dispatches lifecycle points to a market's extension, gated by
// its permission bitset. A market with no extension, or with the point's
// bit unset, pays nothing but the bit test.
//
// The pipeline contains extension misbehaviour: a panic inside a callback
// is recovered and surfaced as types.ErrHookFailed so the caller can roll
// the operation back instead of crashing the engine.
type Pipeline struct {
	log   *logging.Logger
	ext   Extension
	perms Permissions
}

// NewPipeline builds the dispatch pipeline for one market. desc may be nil
// for a market without an extension.
func NewPipeline(log *logging.Logger, cfg Config, desc *Descriptor) (*Pipeline, error) {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	p := &Pipeline{log: log}
	if desc == nil {
		return p, nil
	}
	if desc.Extension == nil && desc.Permissions != 0 {
		return nil, types.ErrInvalidHook
	}
	p.ext = desc.Extension
	p.perms = desc.Permissions
	return p, nil
}

// Enabled reports whether the point will actually dispatch.
func (p *Pipeline) Enabled(pt Point) bool {
	return p.ext != nil && p.perms.Has(pt)
}

// BeforePlace dispatches the pre-placement point and returns the order
// delta, if any.
func (p *Pipeline) BeforePlace(ctx context.Context, o *types.Order) (*OrderDelta, error) {
	if !p.Enabled(BeforePlace) {
		return nil, nil
	}
	var delta *OrderDelta
	err := p.invoke(BeforePlace, func() error {
		var err error
		delta, err = p.ext.BeforePlace(ctx, o)
		return err
	})
	if err != nil {
		return nil, err
	}
	return delta, nil
}

// AfterPlace dispatches the post-placement point.
func (p *Pipeline) AfterPlace(ctx context.Context, o *types.Order) error {
	if !p.Enabled(AfterPlace) {
		return nil
	}
	return p.invoke(AfterPlace, func() error {
		return p.ext.AfterPlace(ctx, o)
	})
}

// BeforeMatch dispatches the pre-fill point.
func (p *Pipeline) BeforeMatch(ctx context.Context, taker, maker *types.Order) error {
	if !p.Enabled(BeforeMatch) {
		return nil
	}
	return p.invoke(BeforeMatch, func() error {
		return p.ext.BeforeMatch(ctx, taker, maker)
	})
}

// AfterMatch dispatches the post-fill point.
func (p *Pipeline) AfterMatch(ctx context.Context, t *types.Trade) error {
	if !p.Enabled(AfterMatch) {
		return nil
	}
	return p.invoke(AfterMatch, func() error {
		return p.ext.AfterMatch(ctx, t)
	})
}

// FeeOverride dispatches the fee-override point and returns the
// replacement fees, if any.
func (p *Pipeline) FeeOverride(ctx context.Context, t *types.Trade) (*FeeDelta, error) {
	if !p.Enabled(FeeOverride) {
		return nil, nil
	}
	var delta *FeeDelta
	err := p.invoke(FeeOverride, func() error {
		var err error
		delta, err = p.ext.FeeOverride(ctx, t)
		return err
	})
	if err != nil {
		return nil, err
	}
	return delta, nil
}

// BeforeCancel dispatches the pre-cancellation point. A veto surfaces as
// types.ErrCancelVetoed, untouched.
func (p *Pipeline) BeforeCancel(ctx context.Context, o *types.Order) error {
	if !p.Enabled(BeforeCancel) {
		return nil
	}
	return p.invoke(BeforeCancel, func() error {
		return p.ext.BeforeCancel(ctx, o)
	})
}

// AfterCancel dispatches the post-cancellation point.
func (p *Pipeline) AfterCancel(ctx context.Context, o *types.Order) error {
	if !p.Enabled(AfterCancel) {
		return nil
	}
	return p.invoke(AfterCancel, func() error {
		return p.ext.AfterCancel(ctx, o)
	})
}

func (p *Pipeline) invoke(pt Point, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("extension panicked",
				logging.String("point", pt.String()),
				logging.Reflect("panic", r))
			err = errors.Wrapf(types.ErrHookFailed, "extension panic at %s: %v", pt, r)
		}
	}()

	if cbErr := fn(); cbErr != nil {
		if errors.Is(cbErr, types.ErrCancelVetoed) {
			return cbErr
		}
		return errors.Wrapf(types.ErrHookFailed, "extension error at %s: %s", pt, cbErr)
	}
	return nil
}
