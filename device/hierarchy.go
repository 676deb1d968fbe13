package device

// Plane, Die, and Package mirror original_source/ssd.h's nested physical
// structure: a Package contains Dies, a Die contains Planes, a Plane
// contains Blocks. Each Package is the channel-contention unit (ssd.h's Bus
// is sized to SSD_SIZE, one channel per package); Blocks themselves still do
// all the state/payload work (see block.go) — these three types only group
// existing *Block pointers the way the physical device nests them.
type Plane struct {
	id     int
	blocks []*Block
}

// Blocks returns the blocks physically housed in this plane.
func (p *Plane) Blocks() []*Block { return p.blocks }

// Die holds its planes; a Package holds several Dies.
type Die struct {
	id     int
	planes []*Plane
}

// Planes returns the die's planes.
func (d *Die) Planes() []*Plane { return d.planes }

// Package holds its dies and the channel it contends on.
type Package struct {
	id      int
	channel int
	dies    []*Die
}

// Dies returns the package's dies.
func (p *Package) Dies() []*Die { return p.dies }

// Channel returns the index of the bus channel this package contends on.
func (p *Package) Channel() int { return p.channel }

// buildHierarchy nests blocks (already constructed, in block-id order) into
// Packages/Dies/Planes per cfg.NumChannels()/DieSize/PlaneSize. Block-to-
// channel assignment is unchanged from a flat id%numChannels scheme; this
// only groups the same blocks into the fanout shape original_source/ssd.h
// describes, distributing block ids round-robin across dies and planes
// within a package so every plane gets a share of the package's blocks.
func buildHierarchy(blocks []*Block, numChannels, diesPerPackage, planesPerDie int) []*Package {
	if diesPerPackage < 1 {
		diesPerPackage = 1
	}
	if planesPerDie < 1 {
		planesPerDie = 1
	}

	packages := make([]*Package, numChannels)
	for p := range packages {
		pkg := &Package{id: p, channel: p, dies: make([]*Die, diesPerPackage)}
		for d := range pkg.dies {
			die := &Die{id: d, planes: make([]*Plane, planesPerDie)}
			for pl := range die.planes {
				die.planes[pl] = &Plane{id: pl}
			}
			pkg.dies[d] = die
		}
		packages[p] = pkg
	}

	for _, b := range blocks {
		id := int(b.id)
		pkg := packages[id%numChannels]
		rest := id / numChannels
		die := pkg.dies[rest%diesPerPackage]
		plane := die.planes[(rest/diesPerPackage)%planesPerDie]
		plane.blocks = append(plane.blocks, b)
	}

	return packages
}
