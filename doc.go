package citation

// Package citation picks a small set of conference papers whose bylines,
// taken together, include every active author of a research field.
//
// Overview
//
// The system is comprised of the following component stages:
//
// 1. Proceedings extraction
//
// CVF Open Access listings (CVPR, ICCV, WACV, ...) are fetched and parsed into
// one JSON file per conference and year under conference_papers/.  A venue
// whose file already exists is skipped, so an interrupted extraction can simply
// be restarted.
//
//     citation extract cvf -c CVPR,ICCV -y 2023,2024
//
// 2. Active author classification
//
// Every author is counted by byline position.  Holding at least 2 first
// author papers, or at least 2 last author papers, or at least 4 middle author
// papers makes an author active.  The active authors are written to
// active_authors.json along with a text report.
//
//     citation active-authors --min-first-or-last 2 --min-middle 4
//
// 3. Minimal paper set
//
// The active authors form the universe to cover.  Papers listing at least one
// of them are candidates, and the greedy selector repeatedly takes the paper
// adding the most not yet covered authors until nothing more can be gained.
// The first candidate wins ties, so a run over the same input files always
// picks the same papers.
//
//     citation min-papers --strategy lazy --xlsx minimal_paper_set.xlsx
//
// Greedy set cover is not optimal, but it is within a logarithmic factor of
// the optimum and takes seconds on hundreds of thousands of papers.
//
// Checkpoints
//
// With --resume NAME every pick is persisted to the checkpoint DB (BoltDB by
// default, or postgres via --driver) as it happens.  Rerunning the same
// command continues from the stored picks, provided the inputs still hash to
// the same fingerprint.
//
//     citation min-papers --resume nightly
//     citation checkpoints ls
//
// Name variants
//
// Bylines are inconsistent about given names ("Kaiming He", "K. He") and
// ordering ("He, Kaiming").  --resolve-names maps such variants onto active
// author names before covering; `citation match-names A B` shows how two
// strings compare.
