package sim

import (
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Scheduler", func() {
	var s *Scheduler

	BeforeEach(func() {
		s = NewScheduler()
	})

	It("runs events in deadline order", func() {
		var order []int
		s.Schedule(Clock(3*time.Millisecond), func() { order = append(order, 3) })
		s.Schedule(Clock(time.Millisecond), func() { order = append(order, 1) })
		s.Schedule(Clock(2*time.Millisecond), func() { order = append(order, 2) })
		s.Run()
		Expect(order).To(Equal([]int{1, 2, 3}))
		Expect(s.Now()).To(Equal(Clock(3 * time.Millisecond)))
	})

	It("breaks deadline ties by insertion order", func() {
		var order []int
		for i := 0; i < 10; i++ {
			i := i
			s.Schedule(Clock(time.Millisecond), func() { order = append(order, i) })
		}
		s.Run()
		Expect(order).To(Equal([]int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}))
	})

	It("advances the clock to the event deadline before running it", func() {
		var at Clock
		s.Schedule(Clock(5*time.Millisecond), func() { at = s.Now() })
		s.Run()
		Expect(at).To(Equal(Clock(5 * time.Millisecond)))
	})

	It("lets events schedule further events", func() {
		fired := 0
		var rearm func()
		rearm = func() {
			fired++
			if fired < 3 {
				s.Schedule(Clock(time.Millisecond), rearm)
			}
		}
		s.Schedule(Clock(time.Millisecond), rearm)
		s.Run()
		Expect(fired).To(Equal(3))
		Expect(s.Now()).To(Equal(Clock(3 * time.Millisecond)))
	})

	It("only runs events up to the given time", func() {
		fired := 0
		s.Schedule(Clock(time.Millisecond), func() { fired++ })
		s.Schedule(Clock(10*time.Millisecond), func() { fired++ })
		s.RunUntil(Clock(5 * time.Millisecond))
		Expect(fired).To(Equal(1))
		Expect(s.Now()).To(Equal(Clock(5 * time.Millisecond)))
		s.RunUntil(Clock(10 * time.Millisecond))
		Expect(fired).To(Equal(2))
	})

	Context("cancellation", func() {
		It("does not run cancelled events", func() {
			fired := false
			e := s.Schedule(Clock(time.Millisecond), func() { fired = true })
			Expect(e.IsPending()).To(BeTrue())
			e.Cancel()
			Expect(e.IsPending()).To(BeFalse())
			s.Run()
			Expect(fired).To(BeFalse())
		})

		It("is idempotent and safe on fired and nil events", func() {
			e := s.Schedule(Clock(time.Millisecond), func() {})
			s.Run()
			Expect(e.IsPending()).To(BeFalse())
			e.Cancel()
			e.Cancel()

			var nilEvent *Event
			nilEvent.Cancel()
			Expect(nilEvent.IsPending()).To(BeFalse())
		})

		It("counts only armed events as pending", func() {
			e1 := s.Schedule(Clock(time.Millisecond), func() {})
			s.Schedule(Clock(2*time.Millisecond), func() {})
			e1.Cancel()
			Expect(s.PendingEvents()).To(Equal(1))
		})
	})
})
