package tracker

// FeedStats counts what happened to one feed during a run.
type FeedStats struct {
	SourceURL string
	FeedTitle string
	FetchErr  string // empty when the fetch succeeded

	Available int // entries in the feed before the per-feed cap
	Selected  int // entries considered after the cap
	New       int // entries absent from the sent record
	Duplicate int // entries already delivered in a prior run
	Posted    int
	Failed    int

	// Duplicates lists the links behind the Duplicate count, in feed
	// order, for the detail table in the run report.
	Duplicates []string
}

// Summary is the externally observed output of a run, next to the
// persisted record and the webhook posts themselves.
type Summary struct {
	Feeds []FeedStats
}

func (s *Summary) Totals() (fetched, newEntries, delivered, failed int) {
	for _, feedStats := range s.Feeds {
		fetched += feedStats.Selected
		newEntries += feedStats.New
		delivered += feedStats.Posted
		failed += feedStats.Failed
	}
	return fetched, newEntries, delivered, failed
}

func (s *Summary) DuplicateCount() int {
	count := 0
	for _, feedStats := range s.Feeds {
		count += len(feedStats.Duplicates)
	}
	return count
}

func (s *Summary) FailedFeeds() []FeedStats {
	var failed []FeedStats
	for _, feedStats := range s.Feeds {
		if feedStats.FetchErr != "" {
			failed = append(failed, feedStats)
		}
	}
	return failed
}
