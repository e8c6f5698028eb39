package links

import (
	"strings"
	"sync"
	"testing"
)

func TestNanoSluggerGenerate(t *testing.T) {
	s := NewNanoSlugger()

	t.Run("default length", func(t *testing.T) {
		slug, err := s.Generate(0)
		if err != nil {
			t.Fatal(err)
		}
		if len(slug) != DefaultSlugLength {
			t.Errorf("got length %d, want %d", len(slug), DefaultSlugLength)
		}
	})

	t.Run("negative length uses default", func(t *testing.T) {
		slug, err := s.Generate(-5)
		if err != nil {
			t.Fatal(err)
		}
		if len(slug) != DefaultSlugLength {
			t.Errorf("got length %d, want %d", len(slug), DefaultSlugLength)
		}
	})

	t.Run("alphabet and length over many draws", func(t *testing.T) {
		const n = 5000
		seen := make(map[string]struct{}, n)
		for i := 0; i < n; i++ {
			slug, err := s.Generate(DefaultSlugLength)
			if err != nil {
				t.Fatal(err)
			}
			if len(slug) != DefaultSlugLength {
				t.Fatalf("got length %d on draw %d", len(slug), i)
			}
			for _, c := range slug {
				if !strings.ContainsRune(slugAlphabet, c) {
					t.Fatalf("slug %q contains %q outside the alphabet", slug, c)
				}
			}
			seen[slug] = struct{}{}
		}
		// 64^7 possible slugs; a handful of duplicates in 5000 draws would
		// already be far outside what uniform draws produce.
		if dups := n - len(seen); dups > 1 {
			t.Errorf("got %d duplicates in %d draws", dups, n)
		}
	})

	t.Run("every slug is a valid custom slug shape", func(t *testing.T) {
		for i := 0; i < 200; i++ {
			slug, _ := s.Generate(DefaultSlugLength)
			if !IsWellFormedSlug(slug) {
				t.Fatalf("generated slug %q is not well formed", slug)
			}
		}
	})

	t.Run("concurrent use", func(t *testing.T) {
		var wg sync.WaitGroup
		errs := make(chan error, 32)
		for i := 0; i < 32; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					if _, err := s.Generate(DefaultSlugLength); err != nil {
						errs <- err
						return
					}
				}
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			t.Error(err)
		}
	})
}
