package logging

import (
	"errors"
	"net"
	"strings"
	"sync"
	"time"
)

var ErrEmptyAddress = errors.New("logstash: empty address")

// LogstashSink ships JSON log lines to a Logstash TCP input from a background
// goroutine. Write never blocks on the network: lines are queued and dropped
// when the queue is full or Logstash is unreachable.
type LogstashSink struct {
	addr          string
	dialTimeout   time.Duration
	writeTimeout  time.Duration
	retryInterval time.Duration
	queueSize     int

	queue chan []byte
	done  chan struct{}
	wg    sync.WaitGroup

	mu      sync.Mutex
	closed  bool
	dropped uint64
}

type Option func(*LogstashSink)

// WithDialTimeout overrides the TCP dial timeout. Defaults to 2 seconds.
func WithDialTimeout(d time.Duration) Option {
	return func(s *LogstashSink) { s.dialTimeout = d }
}

// WithWriteTimeout overrides the TCP write timeout. Defaults to 1 second.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *LogstashSink) { s.writeTimeout = d }
}

// WithRetryInterval sets the cool-down after a failed connect or write.
func WithRetryInterval(d time.Duration) Option {
	return func(s *LogstashSink) { s.retryInterval = d }
}

func WithQueueSize(n int) Option {
	return func(s *LogstashSink) {
		if n > 0 {
			s.queueSize = n
		}
	}
}

func NewLogstashSink(addr string, opts ...Option) (*LogstashSink, error) {
	if strings.TrimSpace(addr) == "" {
		return nil, ErrEmptyAddress
	}
	s := &LogstashSink{
		addr:          addr,
		dialTimeout:   2 * time.Second,
		writeTimeout:  time.Second,
		retryInterval: 5 * time.Second,
		queueSize:     1024,
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.queue = make(chan []byte, s.queueSize)

	s.wg.Add(1)
	go s.run()
	return s, nil
}

// Write implements zapcore.WriteSyncer.
func (s *LogstashSink) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	line := make([]byte, len(p), len(p)+1)
	copy(line, p)
	if line[len(line)-1] != '\n' {
		line = append(line, '\n')
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return len(p), nil
	}
	select {
	case s.queue <- line:
	default:
		s.dropped++
	}
	return len(p), nil
}

func (s *LogstashSink) Sync() error { return nil }

// Dropped reports how many lines were discarded because the queue was full.
func (s *LogstashSink) Dropped() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Close stops the sender after flushing what is already queued.
func (s *LogstashSink) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.queue)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

func (s *LogstashSink) run() {
	defer s.wg.Done()

	var (
		conn      net.Conn
		nextRetry time.Time
	)
	defer func() {
		if conn != nil {
			conn.Close()
		}
	}()

	for line := range s.queue {
		if conn == nil {
			if time.Now().Before(nextRetry) {
				continue
			}
			c, err := net.DialTimeout("tcp", s.addr, s.dialTimeout)
			if err != nil {
				nextRetry = time.Now().Add(s.retryInterval)
				continue
			}
			conn = c
		}

		if s.writeTimeout > 0 {
			_ = conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
		}
		if _, err := conn.Write(line); err != nil {
			conn.Close()
			conn = nil
			nextRetry = time.Now().Add(s.retryInterval)
		}
	}
}
