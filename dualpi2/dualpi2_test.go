package dualpi2

import (
	"time"

	"github.com/tecs2000/ns3-dualpi2/internal/protocol"
	"github.com/tecs2000/ns3-dualpi2/sim"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("QueueDisc", func() {
	var (
		scheduler *sim.Scheduler
		q         *QueueDisc
	)

	BeforeEach(func() {
		scheduler = sim.NewScheduler()
	})

	Context("with an idle queue", func() {
		It("keeps all probabilities at zero", func() {
			q = NewQueueDisc(scheduler, DefaultConfig())
			scheduler.RunUntil(sim.Clock(10 * time.Second))
			Expect(q.DropProb()).To(BeZero())
			Expect(q.ClassicDropProb()).To(BeZero())
			Expect(q.L4SDropProb()).To(BeZero())
			Expect(q.Stats()).To(Equal(Stats{}))
		})
	})

	Context("enqueueing", func() {
		It("routes items to their class queue and tracks bytes", func() {
			q = NewQueueDisc(scheduler, DefaultConfig())
			classic := makeClassicItem(protocol.ECNNotECT, 100)
			l4s := makeL4SItem(200)
			Expect(q.Enqueue(classic)).To(BeTrue())
			Expect(q.Enqueue(l4s)).To(BeTrue())
			Expect(q.QueueSize()).To(Equal(uint32(2)))
			Expect(q.QueueSizeBytes()).To(Equal(classic.Size() + l4s.Size()))
		})

		It("stamps the arrival time exactly once", func() {
			q = NewQueueDisc(scheduler, DefaultConfig())
			item := makeClassicItem(protocol.ECNNotECT, 100)
			Expect(q.Enqueue(item)).To(BeTrue())
			t0, ok := item.Packet().ArrivalTime()
			Expect(ok).To(BeTrue())
			got := q.Dequeue()
			Expect(got).ToNot(BeNil())
			scheduler.RunUntil(sim.Clock(5 * time.Millisecond))
			q.Requeue(got)
			t1, _ := got.Packet().ArrivalTime()
			Expect(t1).To(Equal(t0))
		})

		It("counts a forced drop when the packet limit is reached", func() {
			config := DefaultConfig()
			config.QueueLimit = 3
			q = NewQueueDisc(scheduler, config)
			accepted := 0
			for i := 0; i < 5; i++ {
				if q.Enqueue(makeClassicItem(protocol.ECNNotECT, 100)) {
					accepted++
				}
			}
			Expect(accepted).To(Equal(3))
			Expect(q.Stats().ForcedDrop).To(Equal(uint32(2)))
		})

		It("counts a forced drop when the byte limit would be exceeded", func() {
			config := DefaultConfig()
			config.Mode = ModeBytes
			config.QueueLimit = 300
			q = NewQueueDisc(scheduler, config)
			item := makeClassicItem(protocol.ECNNotECT, 100) // 122 bytes framed
			Expect(q.Enqueue(item)).To(BeTrue())
			Expect(q.Enqueue(makeClassicItem(protocol.ECNNotECT, 100))).To(BeTrue())
			Expect(q.Enqueue(makeClassicItem(protocol.ECNNotECT, 100))).To(BeFalse())
			Expect(q.Stats().ForcedDrop).To(Equal(uint32(1)))
		})
	})

	Context("accounting", func() {
		It("balances enqueued against dequeued, forced and unforced drops", func() {
			config := DefaultConfig()
			config.QueueLimit = 4
			q = NewQueueDisc(scheduler, config)
			enqueued := 0
			for i := 0; i < 7; i++ {
				if q.Enqueue(makeClassicItem(protocol.ECNNotECT, 50)) {
					enqueued++
				}
			}
			dequeued := 0
			for q.Dequeue() != nil {
				dequeued++
			}
			stats := q.Stats()
			Expect(uint32(enqueued)).To(Equal(uint32(dequeued) + stats.UnforcedClassicDrop))
			Expect(uint32(7)).To(Equal(uint32(enqueued) + stats.ForcedDrop))
		})
	})

	Context("the time-shifted scheduler", func() {
		It("prefers the L4S queue inside the shift window", func() {
			q = NewQueueDisc(scheduler, DefaultConfig())
			Expect(q.Enqueue(makeClassicItem(protocol.ECNNotECT, 100))).To(BeTrue())
			scheduler.RunUntil(sim.Clock(10 * time.Millisecond))
			Expect(q.Enqueue(makeL4SItem(100))).To(BeTrue())
			item := q.Dequeue()
			Expect(item).ToNot(BeNil())
			Expect(item.IsL4S()).To(BeTrue())
		})

		It("serves Classic first once the L4S head is older by more than the shift", func() {
			q = NewQueueDisc(scheduler, DefaultConfig())
			Expect(q.Enqueue(makeL4SItem(100))).To(BeTrue())
			scheduler.RunUntil(sim.Clock(40 * time.Millisecond))
			Expect(q.Enqueue(makeClassicItem(protocol.ECNNotECT, 100))).To(BeTrue())
			// the L4S head is 40 ms older than the Classic head, more than
			// the 30 ms shift, so the L4S queue loses its priority
			item := q.Dequeue()
			Expect(item).ToNot(BeNil())
			Expect(item.IsL4S()).To(BeFalse())
		})
	})

	Context("L4S threshold marking", func() {
		It("marks every packet dequeued above the sojourn threshold", func() {
			q = NewQueueDisc(scheduler, DefaultConfig())
			for i := 0; i < 13; i++ {
				Expect(q.Enqueue(makeL4SItem(1000))).To(BeTrue())
			}
			scheduler.RunUntil(sim.Clock(5 * time.Millisecond))
			for i := 0; i < 10; i++ {
				item := q.Dequeue()
				Expect(item).ToNot(BeNil())
				ecn, ok := item.Packet().IPv4ECN()
				Expect(ok).To(BeTrue())
				Expect(ecn).To(Equal(protocol.ECNCE))
			}
			Expect(q.Stats().UnforcedL4SMark).To(Equal(uint32(10)))
			Expect(q.Stats().UnforcedClassicDrop).To(BeZero())
			Expect(q.Stats().ForcedDrop).To(BeZero())
		})

		It("spares a short L4S queue below the probability floor", func() {
			q = NewQueueDisc(scheduler, DefaultConfig())
			Expect(q.Enqueue(makeL4SItem(1000))).To(BeTrue())
			scheduler.RunUntil(sim.Clock(5 * time.Millisecond))
			item := q.Dequeue()
			Expect(item).ToNot(BeNil())
			ecn, ok := item.Packet().IPv4ECN()
			Expect(ok).To(BeTrue())
			Expect(ecn).To(Equal(protocol.ECNECT1))
			Expect(q.Stats().UnforcedL4SMark).To(BeZero())
		})
	})

	Context("Classic marking and dropping", func() {
		It("drops every Not-ECT packet except the last one at full probability", func() {
			config := DefaultConfig()
			config.K = 1
			q = NewQueueDisc(scheduler, config)
			for i := 0; i < 5; i++ {
				Expect(q.Enqueue(makeClassicItem(protocol.ECNNotECT, 100))).To(BeTrue())
			}
			q.dropProb = 1
			q.classicDropProb = 1
			q.l4sDropProb = 1

			item := q.Dequeue()
			Expect(item).ToNot(BeNil())
			Expect(q.QueueSize()).To(BeZero())
			Expect(q.Stats().UnforcedClassicDrop).To(Equal(uint32(4)))
			ecn, ok := item.Packet().IPv4ECN()
			Expect(ok).To(BeTrue())
			Expect(ecn).To(Equal(protocol.ECNNotECT))
		})

		It("marks ECN-capable Classic traffic instead of dropping", func() {
			config := DefaultConfig()
			config.K = 1
			q = NewQueueDisc(scheduler, config)
			Expect(q.Enqueue(makeClassicItem(protocol.ECNECT0, 100))).To(BeTrue())
			Expect(q.Enqueue(makeClassicItem(protocol.ECNECT0, 100))).To(BeTrue())
			q.dropProb = 1
			q.classicDropProb = 1
			q.l4sDropProb = 1

			item := q.Dequeue()
			Expect(item).ToNot(BeNil())
			ecn, ok := item.Packet().IPv4ECN()
			Expect(ok).To(BeTrue())
			Expect(ecn).To(Equal(protocol.ECNCE))
			Expect(q.Stats().UnforcedClassicMark).To(Equal(uint32(1)))
			Expect(q.Stats().UnforcedClassicDrop).To(BeZero())
		})
	})

	Context("the control law", func() {
		It("keeps the coupled probabilities consistent while the delay grows", func() {
			q = NewQueueDisc(scheduler, DefaultConfig())
			Expect(q.Enqueue(makeClassicItem(protocol.ECNNotECT, 100))).To(BeTrue())
			scheduler.RunUntil(sim.Clock(200 * time.Millisecond))
			Expect(q.DropProb()).To(BeNumerically(">", 0))
			Expect(q.ClassicDropProb()).To(Equal(q.DropProb() * q.DropProb()))
			Expect(q.ClassicDropProb()).To(BeNumerically("<=", q.DropProb()))
			Expect(q.L4SDropProb()).To(Equal(2 * q.DropProb()))
		})
	})
})
