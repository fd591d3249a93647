// Package dualpi2 implements the DualPI2 coupled AQM: two internal FIFOs,
// one for Classic and one for L4S traffic, sharing a PI2 control law that
// derives both congestion-signalling probabilities from the Classic queuing
// delay.
package dualpi2

import (
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tecs2000/ns3-dualpi2/internal/protocol"
	"github.com/tecs2000/ns3-dualpi2/sim"
)

// QueueDiscMode determines the unit of the queue limit.
type QueueDiscMode uint8

const (
	// ModePackets limits and measures the queues in packets
	ModePackets QueueDiscMode = iota
	// ModeBytes limits and measures the queues in bytes
	ModeBytes
)

const (
	classicQueue = 0
	l4sQueue     = 1
)

// decay applied to the drop probability when the queue stayed drained for
// two consecutive update periods
const drainedDecay = 0.98

// Config holds the queue disc knobs.
type Config struct {
	Mode        QueueDiscMode `mapstructure:"mode"`
	MeanPktSize uint32        `mapstructure:"meanPktSize"`
	// Alpha and Beta are the PI integral and proportional gains
	Alpha float64 `mapstructure:"alpha"`
	Beta  float64 `mapstructure:"beta"`
	// TUpdate is the period of the probability recalculation; SUpdate its
	// initial delay
	TUpdate time.Duration `mapstructure:"tUpdate"`
	SUpdate time.Duration `mapstructure:"sUpdate"`
	// QueueLimit is shared by both internal queues, in Mode units
	QueueLimit uint32 `mapstructure:"queueLimit"`
	// ClassicQueueDelayReference is the Classic delay target
	ClassicQueueDelayReference time.Duration `mapstructure:"classicQueueDelayReference"`
	// L4SMarkThreshold is the sojourn threshold for L4S CE marking
	L4SMarkThreshold time.Duration `mapstructure:"l4sMarkThreshold"`
	// K couples the L4S marking probability to the base probability
	K uint32 `mapstructure:"k"`
	// Seed initializes the per-instance PRNG, keeping runs reproducible
	Seed int64 `mapstructure:"seed"`
	// Label distinguishes this instance in the exported metrics
	Label string `mapstructure:"label"`
}

// DefaultConfig returns the default knobs.
func DefaultConfig() Config {
	return Config{
		Mode:                       ModePackets,
		MeanPktSize:                1024,
		Alpha:                      10,
		Beta:                       100,
		TUpdate:                    16 * time.Millisecond,
		SUpdate:                    0,
		QueueLimit:                 25,
		ClassicQueueDelayReference: 15 * time.Millisecond,
		L4SMarkThreshold:           time.Millisecond,
		K:                          2,
		Seed:                       1,
		Label:                      "default",
	}
}

// A QueueDisc is a DualPI2 queue discipline instance. It is owned by a
// single RLC entity and must only be used from the owning scheduler.
type QueueDisc struct {
	mode        QueueDiscMode
	meanPktSize uint32
	queueLimit  uint32
	k           uint32
	label       string

	tUpdate      sim.Clock
	classicRef   sim.Clock
	l4sThreshold sim.Clock
	tShift       sim.Clock
	alphaU       float64
	betaU        float64

	queues     [2][]Item
	queueBytes [2]protocol.ByteCount

	dropProb        float64
	classicDropProb float64
	l4sDropProb     float64
	qDelayOld       sim.Clock

	stats Stats

	scheduler   *sim.Scheduler
	updateEvent *sim.Event
	rng         *rand.Rand
	log         *logrus.Entry
}

// NewQueueDisc creates a queue disc and arms the probability update timer.
func NewQueueDisc(scheduler *sim.Scheduler, config Config) *QueueDisc {
	if config.Label == "" {
		config.Label = "default"
	}
	q := &QueueDisc{
		mode:         config.Mode,
		meanPktSize:  config.MeanPktSize,
		queueLimit:   config.QueueLimit,
		k:            config.K,
		label:        config.Label,
		tUpdate:      sim.Clock(config.TUpdate),
		classicRef:   sim.Clock(config.ClassicQueueDelayReference),
		l4sThreshold: sim.Clock(config.L4SMarkThreshold),
		tShift:       2 * sim.Clock(config.ClassicQueueDelayReference),
		alphaU:       config.Alpha * config.TUpdate.Seconds(),
		betaU:        config.Beta * config.TUpdate.Seconds(),
		scheduler:    scheduler,
		rng:          rand.New(rand.NewSource(config.Seed)),
		log:          logrus.WithField("component", "dualpi2"),
	}
	q.updateEvent = scheduler.Schedule(sim.Clock(config.SUpdate), q.calculateP)
	return q
}

// Close cancels the update timer.
func (q *QueueDisc) Close() {
	q.updateEvent.Cancel()
}

// QueueSize returns the total amount queued, in Mode units.
func (q *QueueDisc) QueueSize() uint32 {
	if q.mode == ModeBytes {
		return uint32(q.queueBytes[classicQueue] + q.queueBytes[l4sQueue])
	}
	return uint32(len(q.queues[classicQueue]) + len(q.queues[l4sQueue]))
}

// QueueSizeBytes returns the total amount queued in bytes, independent of
// the Mode.
func (q *QueueDisc) QueueSizeBytes() protocol.ByteCount {
	return q.queueBytes[classicQueue] + q.queueBytes[l4sQueue]
}

// DropProb returns the base drop probability.
func (q *QueueDisc) DropProb() float64 {
	return q.dropProb
}

// ClassicDropProb returns the Classic (squared) probability.
func (q *QueueDisc) ClassicDropProb() float64 {
	return q.classicDropProb
}

// L4SDropProb returns the coupled L4S marking probability.
func (q *QueueDisc) L4SDropProb() float64 {
	return q.l4sDropProb
}

// Stats returns a snapshot of the counters.
func (q *QueueDisc) Stats() Stats {
	return q.stats
}

// headArrival returns the arrival tag of the head of the given queue, zero
// if the queue is empty. A queued packet without the tag is a programming
// error.
func (q *QueueDisc) headArrival(queue int) sim.Clock {
	if len(q.queues[queue]) == 0 {
		return 0
	}
	t, ok := q.queues[queue][0].Packet().ArrivalTime()
	if !ok {
		panic("dualpi2: queued packet without arrival-time tag")
	}
	return t
}

// HeadTime returns the later of the two head-of-line arrival times, zero
// when both queues are empty. The caller derives the head-of-line delay as
// now - HeadTime.
func (q *QueueDisc) HeadTime() sim.Clock {
	classicTime := q.headArrival(classicQueue)
	l4sTime := q.headArrival(l4sQueue)
	if classicTime >= l4sTime {
		return classicTime
	}
	return l4sTime
}

// Enqueue attaches the arrival-time tag and routes the item to its class
// queue. It reports false and counts a forced drop when the limit would be
// exceeded.
func (q *QueueDisc) Enqueue(item Item) bool {
	item.Packet().StampArrivalTime(q.scheduler.Now())

	nQueued := q.QueueSize()
	if (q.mode == ModePackets && nQueued >= q.queueLimit) ||
		(q.mode == ModeBytes && nQueued+uint32(item.Size()) > q.queueLimit) {
		q.stats.ForcedDrop++
		forcedDrops.WithLabelValues(q.label).Inc()
		q.log.WithFields(logrus.Fields{
			"size":   item.Size(),
			"queued": nQueued,
		}).Debug("queue limit reached, dropping before enqueue")
		return false
	}

	queue := classicQueue
	if item.IsL4S() {
		queue = l4sQueue
	}
	q.queues[queue] = append(q.queues[queue], item)
	q.queueBytes[queue] += item.Size()
	return true
}

// Requeue puts an item back at the front of its class queue. The enclosed
// packet keeps its original arrival-time tag.
func (q *QueueDisc) Requeue(item Item) {
	queue := classicQueue
	if item.IsL4S() {
		queue = l4sQueue
	}
	q.queues[queue] = append([]Item{item}, q.queues[queue]...)
	q.queueBytes[queue] += item.Size()
}

// Peek returns the head item of the first non-empty queue without removing
// it, nil when both queues are empty.
func (q *QueueDisc) Peek() Item {
	for _, queue := range q.queues {
		if len(queue) > 0 {
			return queue[0]
		}
	}
	return nil
}

func (q *QueueDisc) pop(queue int) Item {
	item := q.queues[queue][0]
	q.queues[queue] = q.queues[queue][1:]
	q.queueBytes[queue] -= item.Size()
	return item
}

// Dequeue runs the time-shifted scheduler over the two queues and applies
// the marking and dropping rules to the selected head. It returns nil when
// both queues are empty.
func (q *QueueDisc) Dequeue() Item {
	for q.QueueSize() > 0 {
		classicTime := q.headArrival(classicQueue)
		l4sTime := q.headArrival(l4sQueue)

		if len(q.queues[l4sQueue]) > 0 && l4sTime+q.tShift >= classicTime {
			item := q.pop(l4sQueue)
			arrival, _ := item.Packet().ArrivalTime()

			overThreshold := false
			if q.mode == ModeBytes && q.queueBytes[l4sQueue] > 2*protocol.ByteCount(q.meanPktSize) {
				overThreshold = true
			} else if q.mode == ModePackets && len(q.queues[l4sQueue]) > 2 {
				overThreshold = true
			}

			if (q.scheduler.Now()-arrival > q.l4sThreshold && overThreshold) ||
				q.l4sDropProb > q.rng.Float64() {
				item.Mark()
				q.stats.UnforcedL4SMark++
				unforcedL4SMarks.WithLabelValues(q.label).Inc()
			}
			return item
		}

		item := q.pop(classicQueue)
		if q.classicDropProb/float64(q.k) > q.rng.Float64() {
			if !item.Mark() {
				if q.QueueSize() > 0 {
					q.stats.UnforcedClassicDrop++
					unforcedClassicDrops.WithLabelValues(q.label).Inc()
					continue
				}
				// it was the only queued packet, send it anyway
				return item
			}
			q.stats.UnforcedClassicMark++
			unforcedClassicMarks.WithLabelValues(q.label).Inc()
			return item
		}
		return item
	}
	return nil
}

// calculateP samples the Classic queuing delay and updates the base drop
// probability and its two coupled derivatives.
func (q *QueueDisc) calculateP() {
	var qDelay sim.Clock
	if len(q.queues[classicQueue]) > 0 {
		qDelay = q.scheduler.Now() - q.headArrival(classicQueue)
	}

	// If qdelay is zero and the queue is not, the queue is smaller than the
	// dequeue rate; skip this round.
	if qDelay == 0 && q.QueueSize() > 0 {
		q.updateEvent = q.scheduler.Schedule(q.tUpdate, q.calculateP)
		return
	}

	delta := q.alphaU*(qDelay.Seconds()-q.classicRef.Seconds()) +
		q.betaU*(qDelay.Seconds()-q.qDelayOld.Seconds())
	q.dropProb += delta

	// collapse quickly once the queue stayed drained
	if qDelay == 0 && q.qDelayOld == 0 {
		q.dropProb *= drainedDecay
	}

	if q.dropProb < 0 {
		q.dropProb = 0
	}
	if q.dropProb > 1 {
		q.dropProb = 1
	}

	q.l4sDropProb = q.dropProb * float64(q.k)
	q.classicDropProb = q.dropProb * q.dropProb
	q.qDelayOld = qDelay
	q.updateEvent = q.scheduler.Schedule(q.tUpdate, q.calculateP)
}
