// Package ethrpc provides a read-only pool backend over an Ethereum JSON-RPC
// endpoint. It is enough to run every pricing operation of the engine
// against live chain state; execution needs a transactional backend and is
// refused with pool.ErrReadOnlyBackend.
package ethrpc

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pairflow/pairflow-router-go/engine"
	"github.com/pairflow/pairflow-router-go/pool"
)

const wordSize = 32

// 4-byte selectors of the view functions the backend calls.
var (
	selectorGetReserves = []byte{0x09, 0x02, 0xf1, 0xac} // getReserves()
	selectorGetPair     = []byte{0xe6, 0xa4, 0x39, 0x05} // getPair(address,address)
	selectorBalanceOf   = []byte{0x70, 0xa0, 0x82, 0x31} // balanceOf(address)
)

// ErrBadResponse is returned when an eth_call result does not decode to the
// expected word layout.
var ErrBadResponse = errors.New("ethrpc: malformed call result")

// Config holds the configuration for the backend.
type Config struct {
	// URL of the JSON-RPC endpoint. Required.
	URL string

	// Factory the getPair lookups go to. Required.
	Factory common.Address

	// Logger for structured logging. Optional.
	Logger engine.Logger

	// Registry to register call metrics on. Optional.
	Registry prometheus.Registerer
}

// validate checks if the configuration is valid.
func (c *Config) validate() error {
	if c.URL == "" {
		return errors.New("ethrpc: config: URL is required")
	}
	if c.Factory == (common.Address{}) {
		return errors.New("ethrpc: config: Factory is required")
	}
	return nil
}

// Backend implements pool.Backend for reads against a live chain.
type Backend struct {
	client  *rpc.Client
	factory common.Address
	logger  engine.Logger
	metrics *callMetrics
}

// Dial connects to the endpoint and returns a read-only backend. The
// connection's lifecycle is bound to Close, not to the dial context.
func Dial(ctx context.Context, cfg Config) (*Backend, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	client, err := rpc.DialContext(ctx, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("ethrpc: dial %s: %w", cfg.URL, err)
	}
	b := &Backend{
		client:  client,
		factory: cfg.Factory,
		logger:  engine.NopLogger{},
	}
	if cfg.Logger != nil {
		b.logger = cfg.Logger
	}
	if cfg.Registry != nil {
		b.metrics = newCallMetrics(cfg.Registry)
	}
	return b, nil
}

// Close releases the underlying RPC connection.
func (b *Backend) Close() {
	b.client.Close()
}

// call performs one eth_call against the latest block.
func (b *Backend) call(ctx context.Context, method string, to common.Address, data []byte) ([]byte, error) {
	start := time.Now()
	var result hexutil.Bytes
	err := b.client.CallContext(ctx, &result, "eth_call", map[string]any{
		"to":   to,
		"data": hexutil.Bytes(data),
	}, "latest")
	b.observe(method, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("ethrpc: %s on %s: %w", method, to.Hex(), err)
	}
	return result, nil
}

// GetPair queries the factory's pair mapping. The zero address means the
// pair has not been created.
func (b *Backend) GetPair(ctx context.Context, tokenA, tokenB common.Address) (common.Address, bool, error) {
	data := make([]byte, 0, 4+2*wordSize)
	data = append(data, selectorGetPair...)
	data = append(data, common.LeftPadBytes(tokenA.Bytes(), wordSize)...)
	data = append(data, common.LeftPadBytes(tokenB.Bytes(), wordSize)...)
	result, err := b.call(ctx, "getPair", b.factory, data)
	if err != nil {
		return common.Address{}, false, err
	}
	if len(result) != wordSize {
		return common.Address{}, false, fmt.Errorf("%w: getPair returned %d bytes", ErrBadResponse, len(result))
	}
	addr := common.BytesToAddress(result)
	return addr, addr != (common.Address{}), nil
}

// BalanceOf reads an ERC-20 balance.
func (b *Backend) BalanceOf(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	data := make([]byte, 0, 4+wordSize)
	data = append(data, selectorBalanceOf...)
	data = append(data, common.LeftPadBytes(owner.Bytes(), wordSize)...)
	result, err := b.call(ctx, "balanceOf", token, data)
	if err != nil {
		return nil, err
	}
	if len(result) != wordSize {
		return nil, fmt.Errorf("%w: balanceOf returned %d bytes", ErrBadResponse, len(result))
	}
	return new(uint256.Int).SetBytes(result).ToBig(), nil
}

// Pair resolves a pair address to a read-only handle. No existence check is
// made here; a call against a non-contract address surfaces as a decode
// error from GetReserves.
func (b *Backend) Pair(addr common.Address) (pool.Pair, error) {
	return &remotePair{backend: b, addr: addr}, nil
}

// CreatePair is unsupported: the backend is read-only.
func (b *Backend) CreatePair(context.Context, common.Address, common.Address) (common.Address, error) {
	return common.Address{}, pool.ErrReadOnlyBackend
}

// Transfer is unsupported: the backend is read-only.
func (b *Backend) Transfer(context.Context, common.Address, common.Address, common.Address, *big.Int) error {
	return pool.ErrReadOnlyBackend
}

// remotePair reads pair state over RPC and refuses mutations.
type remotePair struct {
	backend *Backend
	addr    common.Address
}

// GetReserves calls getReserves() and decodes the (uint112, uint112, uint32)
// result words.
func (p *remotePair) GetReserves(ctx context.Context) (*big.Int, *big.Int, uint32, error) {
	result, err := p.backend.call(ctx, "getReserves", p.addr, selectorGetReserves)
	if err != nil {
		return nil, nil, 0, err
	}
	reserve0, reserve1, ts, err := decodeReserves(result)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("%w (pair %s)", err, p.addr.Hex())
	}
	return reserve0, reserve1, ts, nil
}

func (p *remotePair) Swap(context.Context, *big.Int, *big.Int, common.Address, []byte) error {
	return pool.ErrReadOnlyBackend
}

func (p *remotePair) Mint(context.Context, common.Address) (*big.Int, error) {
	return nil, pool.ErrReadOnlyBackend
}

func (p *remotePair) Burn(context.Context, common.Address) (*big.Int, *big.Int, error) {
	return nil, nil, pool.ErrReadOnlyBackend
}

// decodeReserves unpacks the three ABI words of getReserves().
func decodeReserves(result []byte) (*big.Int, *big.Int, uint32, error) {
	if len(result) != 3*wordSize {
		return nil, nil, 0, fmt.Errorf("%w: getReserves returned %d bytes", ErrBadResponse, len(result))
	}
	reserve0 := new(uint256.Int).SetBytes(result[:wordSize])
	reserve1 := new(uint256.Int).SetBytes(result[wordSize : 2*wordSize])
	ts := new(uint256.Int).SetBytes(result[2*wordSize:])
	if !ts.IsUint64() || ts.Uint64() > (1<<32)-1 {
		return nil, nil, 0, fmt.Errorf("%w: timestamp word out of range", ErrBadResponse)
	}
	return reserve0.ToBig(), reserve1.ToBig(), uint32(ts.Uint64()), nil
}

// --- Metrics ---

type callMetrics struct {
	callsTotal   *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	callDuration prometheus.Histogram
}

func newCallMetrics(registry prometheus.Registerer) *callMetrics {
	m := &callMetrics{
		callsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pairflow",
			Subsystem: "ethrpc",
			Name:      "calls_total",
			Help:      "Number of eth_call requests issued, by contract method.",
		}, []string{"method"}),
		errorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pairflow",
			Subsystem: "ethrpc",
			Name:      "call_errors_total",
			Help:      "Number of failed eth_call requests, by contract method.",
		}, []string{"method"}),
		callDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "pairflow",
			Subsystem: "ethrpc",
			Name:      "call_duration_seconds",
			Help:      "Latency of eth_call requests.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	registry.MustRegister(m.callsTotal, m.errorsTotal, m.callDuration)
	return m
}

func (b *Backend) observe(method string, elapsed time.Duration, err error) {
	if b.metrics == nil {
		return
	}
	b.metrics.callsTotal.WithLabelValues(method).Inc()
	b.metrics.callDuration.Observe(elapsed.Seconds())
	if err != nil {
		b.metrics.errorsTotal.WithLabelValues(method).Inc()
	}
}
