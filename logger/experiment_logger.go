package logger

import (
	"bufio"
	"fmt"
	"os"
	"sync"

	lru "github.com/hashicorp/golang-lru"

	"github.com/tecs2000/ns3-dualpi2/internal/protocol"
	"github.com/tecs2000/ns3-dualpi2/sim"
)

// this module records per-PDU traces to CSV files so scenario runs can be
// plotted afterwards; it is controlled by the application wiring the stack

// recentDelayWindow bounds the per-SN transit-delay samples kept for the
// windowed delay summary.
const recentDelayWindow = 128

type experimentationLogger struct {
	lock    sync.Mutex
	txLog   *bufio.Writer
	rxLog   *bufio.Writer
	dropLog *bufio.Writer
	aqmLog  *bufio.Writer

	recentDelays *lru.Cache
}

var experimentationLoggerSingleton *experimentationLogger

func newLogger(name, heading, prefix string) *bufio.Writer {
	file, err := os.OpenFile(prefix+"_"+name+".csv", os.O_RDWR|os.O_CREATE, 0755)
	if err != nil {
		panic(err)
	}
	writer := bufio.NewWriter(file)
	writer.WriteString(heading + "\n")
	return writer
}

// InitExperimentationLogger opens the trace files. Until it is called, all
// Insert functions are no-ops.
func InitExperimentationLogger(prefix string) {
	delays, err := lru.New(recentDelayWindow)
	if err != nil {
		panic(err)
	}
	experimentationLoggerSingleton = &experimentationLogger{
		txLog:        newLogger("tx", "rnti,lcid,size,timestamp", prefix),
		rxLog:        newLogger("rx", "rnti,lcid,size,delayNs,timestamp", prefix),
		dropLog:      newLogger("drop", "rnti,lcid,size,reason,timestamp", prefix),
		aqmLog:       newLogger("aqm", "forcedDrop,classicDrop,classicMark,l4sMark,timestamp", prefix),
		recentDelays: delays,
	}
}

// FlushExperimentationLogger flushes all trace files.
func FlushExperimentationLogger() {
	l := experimentationLoggerSingleton
	if l == nil {
		return
	}
	l.lock.Lock()
	l.txLog.Flush()
	l.rxLog.Flush()
	l.dropLog.Flush()
	l.aqmLog.Flush()
	l.lock.Unlock()
}

// ExpLogInsertTxPdu records a PDU handed to the MAC.
func ExpLogInsertTxPdu(rnti protocol.RNTI, lcid protocol.LCID, size protocol.ByteCount, now sim.Clock) {
	l := experimentationLoggerSingleton
	if l == nil {
		return
	}
	line := fmt.Sprintf("%d,%d,%d,%d\n", rnti, lcid, size, now.Duration().Nanoseconds())
	l.lock.Lock()
	l.txLog.WriteString(line)
	l.lock.Unlock()
}

// ExpLogInsertRxPdu records a PDU received from the MAC together with its
// transit delay, and feeds the windowed delay summary.
func ExpLogInsertRxPdu(rnti protocol.RNTI, lcid protocol.LCID, size protocol.ByteCount, sn uint16, delay, now sim.Clock) {
	l := experimentationLoggerSingleton
	if l == nil {
		return
	}
	line := fmt.Sprintf("%d,%d,%d,%d,%d\n", rnti, lcid, size, delay.Duration().Nanoseconds(), now.Duration().Nanoseconds())
	l.lock.Lock()
	l.rxLog.WriteString(line)
	l.recentDelays.Add(sn, delay)
	l.lock.Unlock()
}

// ExpLogInsertDrop records an SDU discarded on the transmit side.
func ExpLogInsertDrop(rnti protocol.RNTI, lcid protocol.LCID, size protocol.ByteCount, reason string, now sim.Clock) {
	l := experimentationLoggerSingleton
	if l == nil {
		return
	}
	line := fmt.Sprintf("%d,%d,%d,%s,%d\n", rnti, lcid, size, reason, now.Duration().Nanoseconds())
	l.lock.Lock()
	l.dropLog.WriteString(line)
	l.lock.Unlock()
}

// ExpLogInsertAqmStats records a snapshot of the AQM counters.
func ExpLogInsertAqmStats(forcedDrop, classicDrop, classicMark, l4sMark uint32, now sim.Clock) {
	l := experimentationLoggerSingleton
	if l == nil {
		return
	}
	line := fmt.Sprintf("%d,%d,%d,%d,%d\n", forcedDrop, classicDrop, classicMark, l4sMark, now.Duration().Nanoseconds())
	l.lock.Lock()
	l.aqmLog.WriteString(line)
	l.lock.Unlock()
}

// WindowedMeanDelay returns the mean transit delay over the most recently
// received PDUs, zero when nothing was received yet.
func WindowedMeanDelay() sim.Clock {
	l := experimentationLoggerSingleton
	if l == nil {
		return 0
	}
	l.lock.Lock()
	defer l.lock.Unlock()
	keys := l.recentDelays.Keys()
	if len(keys) == 0 {
		return 0
	}
	var sum sim.Clock
	for _, k := range keys {
		if v, ok := l.recentDelays.Peek(k); ok {
			sum += v.(sim.Clock)
		}
	}
	return sum / sim.Clock(len(keys))
}
