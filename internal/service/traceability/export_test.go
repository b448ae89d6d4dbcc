package traceability

import "time"

func (a *CostAllocator) SetClock(now func() time.Time) { a.now = now }

func (s *PackagingService) SetClock(now func() time.Time) { s.now = now }
