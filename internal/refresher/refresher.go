// Package refresher periodically extends the materialised window of every
// active recurrence rule.
package refresher

import (
	"alcyxob/workout-scheduler/internal/domain"
	"alcyxob/workout-scheduler/internal/service"
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const defaultRunTimeout = 10 * time.Minute

type RuleLister interface {
	ListActive(ctx context.Context) ([]domain.RecurrenceRule, error)
}

type OccurrenceGenerator interface {
	Generate(ctx context.Context, rule *domain.RecurrenceRule, maxNew int) (service.GenerateResult, error)
}

// Summary describes one refresh run.
type Summary struct {
	Rules   int
	Expired int // endDate before today, not touched
	Failed  int
	Created int
}

type Options struct {
	// Six-field cron spec (seconds first) or a descriptor such as "@daily".
	Schedule    string
	Concurrency int
	RunTimeout  time.Duration
	Now         func() time.Time
}

type Refresher struct {
	rules     RuleLister
	generator OccurrenceGenerator
	schedule  cron.Schedule
	opts      Options

	cron    *cron.Cron
	running sync.Mutex
}

// New validates the schedule. The cron loop starts with Start.
func New(rules RuleLister, generator OccurrenceGenerator, opts Options) (*Refresher, error) {
	schedule, err := cron.Parse(opts.Schedule)
	if err != nil {
		return nil, fmt.Errorf("parse refresh schedule %q: %w", opts.Schedule, err)
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.RunTimeout <= 0 {
		opts.RunTimeout = defaultRunTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Refresher{
		rules:     rules,
		generator: generator,
		schedule:  schedule,
		opts:      opts,
	}, nil
}

func (r *Refresher) Start() {
	r.cron = cron.New()
	r.cron.Schedule(r.schedule, cron.FuncJob(r.tick))
	r.cron.Start()
	log.Infof("recurrence refresher scheduled [%s], concurrency %d", r.opts.Schedule, r.opts.Concurrency)
}

func (r *Refresher) Stop() {
	if r.cron != nil {
		r.cron.Stop()
	}
}

func (r *Refresher) tick() {
	// a slow run must not overlap with the next tick
	if !r.running.TryLock() {
		log.Warn("recurrence refresh still running, skipping tick")
		return
	}
	defer r.running.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), r.opts.RunTimeout)
	defer cancel()

	if _, err := r.RunOnce(ctx); err != nil {
		log.Errorf("recurrence refresh: %s", err)
	}
}

// RunOnce invokes the generator for every active, unexpired rule. A failing
// rule is logged and counted; it does not stop the others.
func (r *Refresher) RunOnce(ctx context.Context) (Summary, error) {
	var summary Summary

	rules, err := r.rules.ListActive(ctx)
	if err != nil {
		return summary, fmt.Errorf("list active rules: %w", err)
	}
	summary.Rules = len(rules)

	today := domain.StartOfDay(r.opts.Now())
	var failed, created int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)
	for i := range rules {
		rule := &rules[i]
		if rule.EndDate != nil && domain.StartOfDay(*rule.EndDate).Before(today) {
			summary.Expired++
			continue
		}

		g.Go(func() error {
			result, err := r.generator.Generate(gctx, rule, 0)
			atomic.AddInt64(&created, int64(result.Created))
			if err != nil {
				atomic.AddInt64(&failed, 1)
				log.WithFields(log.Fields{
					"rule_id": rule.ID.Hex(),
					"user_id": rule.UserID.Hex(),
					"created": result.Created,
				}).Warnf("refresh rule: %s", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	summary.Failed = int(failed)
	summary.Created = int(created)

	log.WithFields(log.Fields{
		"rules":   summary.Rules,
		"expired": summary.Expired,
		"failed":  summary.Failed,
		"created": summary.Created,
	}).Info("recurrence refresh finished")
	return summary, ctx.Err()
}
