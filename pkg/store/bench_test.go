package store

import (
	"math/rand"
	"sync/atomic"
	"testing"

	"github.com/shaanrockz/PySyft/pkg/types"
)

func BenchmarkSetGet_Parallel(b *testing.B) {
	s := New(Options{})
	val := types.Scalar(1.0)
	var cnt atomic.Uint64
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			id := cnt.Add(1)
			s.Set(types.ObjectID(id), val)
			// read one of the recently written ids
			rid := id - 1 - uint64(rand.Intn(8))
			if rid > 0 && rid < id {
				s.Get(types.ObjectID(rid))
			}
		}
	})
}

func BenchmarkSearch(b *testing.B) {
	s := New(Options{})
	for i := 0; i < 4096; i++ {
		tags := []string{"all"}
		if i%16 == 0 {
			tags = append(tags, "rare")
		}
		s.SetTagged(types.ObjectID(i+1), int64(i), tags, "")
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if got := s.Search("rare"); len(got) != 256 {
			b.Fatalf("unexpected result size %d", len(got))
		}
	}
}
