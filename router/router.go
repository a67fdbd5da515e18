// Package router composes the pricing primitives over multi-hop paths and
// orchestrates swap and liquidity execution against the pool collaborators.
package router

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pairflow/pairflow-router-go/amm"
	"github.com/pairflow/pairflow-router-go/engine"
	"github.com/pairflow/pairflow-router-go/pool"
)

// Router prices and executes trades against one deployment context. It holds
// no mutable state of its own: every reserve read goes to the backend at
// decision time, so results always reflect the latest observable state.
type Router struct {
	env     engine.Context
	backend pool.Backend
	logger  engine.Logger
	metrics *routerMetrics
}

// Option configures the Router. The interface method is unexported to
// prevent external modification after New.
type Option interface {
	apply(*Router)
}

type funcOption func(*Router)

func (f funcOption) apply(r *Router) {
	f(r)
}

// WithLogger attaches a structured logger. Without it the router is silent.
func WithLogger(logger engine.Logger) Option {
	return funcOption(func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	})
}

// WithPrometheusRegistry registers the router's metrics on the given registry.
func WithPrometheusRegistry(registry prometheus.Registerer) Option {
	return funcOption(func(r *Router) {
		if registry != nil {
			r.metrics = newRouterMetrics(registry)
		}
	})
}

// New constructs a Router for the deployment context and backend.
func New(env engine.Context, backend pool.Backend, opts ...Option) (*Router, error) {
	if err := env.Validate(); err != nil {
		return nil, fmt.Errorf("router: invalid context: %w", err)
	}
	if backend == nil {
		return nil, ErrNilBackend
	}
	r := &Router{
		env:     env,
		backend: backend,
		logger:  engine.NopLogger{},
	}
	for _, opt := range opts {
		opt.apply(r)
	}
	return r, nil
}

// Context returns the immutable deployment context the router was built with.
func (r *Router) Context() engine.Context {
	return r.env
}

// PairFor derives the pair address for a token pair under the router's
// context. Pure; the pair need not exist.
func (r *Router) PairFor(tokenA, tokenB common.Address) (common.Address, error) {
	return amm.PairFor(r.env.Factory, r.env.PairCodeHash, tokenA, tokenB)
}

// ReservesFor fetches the pair's reserves and reorients them to the caller's
// (tokenA, tokenB) argument order. Never cached: each pricing decision must
// observe the latest state.
func (r *Router) ReservesFor(ctx context.Context, tokenA, tokenB common.Address) (reserveA, reserveB *big.Int, err error) {
	token0, _, err := amm.SortTokens(tokenA, tokenB)
	if err != nil {
		return nil, nil, err
	}
	addr, err := r.PairFor(tokenA, tokenB)
	if err != nil {
		return nil, nil, err
	}
	pair, err := r.backend.Pair(addr)
	if err != nil {
		return nil, nil, err
	}
	reserve0, reserve1, _, err := pair.GetReserves(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("router: reserves for %s: %w", addr.Hex(), err)
	}
	if tokenA == token0 {
		return reserve0, reserve1, nil
	}
	return reserve1, reserve0, nil
}

// --- Metrics ---

type routerMetrics struct {
	quotesTotal   *prometheus.CounterVec
	swapHopsTotal prometheus.Counter
}

func newRouterMetrics(registry prometheus.Registerer) *routerMetrics {
	m := &routerMetrics{
		quotesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pairflow",
			Subsystem: "router",
			Name:      "quotes_total",
			Help:      "Number of path quotes served, by direction.",
		}, []string{"direction"}),
		swapHopsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pairflow",
			Subsystem: "router",
			Name:      "swap_hops_total",
			Help:      "Number of pair swap invocations executed.",
		}),
	}
	registry.MustRegister(m.quotesTotal, m.swapHopsTotal)
	return m
}

func (r *Router) countQuote(direction string) {
	if r.metrics != nil {
		r.metrics.quotesTotal.WithLabelValues(direction).Inc()
	}
}

func (r *Router) countSwapHop() {
	if r.metrics != nil {
		r.metrics.swapHopsTotal.Inc()
	}
}
