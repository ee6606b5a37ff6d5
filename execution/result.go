// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package execution

import (
	"fmt"
	"sync"
)

// Severity of a validation result.
type Severity uint8

const (
	SeveritySuccess Severity = 0
	SeverityNeutral Severity = 1
	SeverityFailure Severity = 3
)

// Facility groups result codes by the component defining them.
type Facility uint8

const (
	FacilityCore  Facility = 0x43
	FacilityChain Facility = 0xff
)

// Result is a validation outcome: 2 bits of severity, a facility byte and a 16 bit code.
type Result uint32

// MakeResult composes a result.
func MakeResult(severity Severity, facility Facility, code uint16) Result {
	return Result(uint32(severity)<<30 | uint32(facility)<<16 | uint32(code))
}

func (r Result) Severity() Severity { return Severity(r >> 30) }
func (r Result) Facility() Facility { return Facility(r >> 16) }
func (r Result) Code() uint16       { return uint16(r) }

func (r Result) IsSuccess() bool { return r.Severity() == SeveritySuccess }
func (r Result) IsNeutral() bool { return r.Severity() == SeverityNeutral }
func (r Result) IsFailure() bool { return r.Severity() == SeverityFailure }

func (r Result) String() string {
	resultNames.RLock()
	name, ok := resultNames.m[r]
	resultNames.RUnlock()
	if ok {
		return name
	}
	return fmt.Sprintf("result(0x%08x)", uint32(r))
}

// Aggregate keeps the most severe of two results. On a tie the current one is kept.
func Aggregate(current, next Result) Result {
	if next.Severity() > current.Severity() {
		return next
	}
	return current
}

var resultNames = struct {
	sync.RWMutex
	m map[Result]string
}{m: make(map[Result]string)}

// DefineResult creates a named result. It panics if the value is already defined.
func DefineResult(name string, severity Severity, facility Facility, code uint16) Result {
	r := MakeResult(severity, facility, code)
	resultNames.Lock()
	defer resultNames.Unlock()
	if existing, ok := resultNames.m[r]; ok {
		panic(fmt.Sprintf("execution: result %v already defined as %v", name, existing))
	}
	resultNames.m[r] = name
	return r
}

var (
	Success = DefineResult("Success", SeveritySuccess, FacilityCore, 0)
	Neutral = DefineResult("Neutral", SeverityNeutral, FacilityCore, 0)
	Failure = DefineResult("Failure", SeverityFailure, FacilityCore, 0)

	FailureChainUnlinked                 = DefineResult("Failure_Chain_Unlinked", SeverityFailure, FacilityChain, 1)
	FailureChainBlockNotHit              = DefineResult("Failure_Chain_Block_Not_Hit", SeverityFailure, FacilityChain, 2)
	FailureChainInconsistentStateHash    = DefineResult("Failure_Chain_Inconsistent_State_Hash", SeverityFailure, FacilityChain, 3)
	FailureChainInconsistentReceiptsHash = DefineResult("Failure_Chain_Inconsistent_Receipts_Hash", SeverityFailure, FacilityChain, 4)
	FailureChainUnconfirmedCacheTooFull  = DefineResult("Failure_Chain_Unconfirmed_Cache_Too_Full", SeverityFailure, FacilityChain, 5)
)
