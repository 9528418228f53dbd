package graphics_test

import (
	"testing"

	"github.com/dcore-engine/dcore/debug"
	"github.com/dcore-engine/dcore/graphics"
	"github.com/vkngwrapper/core/v3/core1_0"
)

func TestTablesAreIndependent(t *testing.T) {
	f := initFixture(t)

	rp, err := f.state.AddRenderPasses(core1_0.RenderPassCreateInfo{})
	if err != nil {
		t.Fatal(err)
	}
	ds, err := f.state.AddDescriptorSetLayouts(core1_0.DescriptorSetLayoutCreateInfo{}, core1_0.DescriptorSetLayoutCreateInfo{})
	if err != nil {
		t.Fatal(err)
	}
	if rp != 0 || ds != 0 {
		t.Fatalf("indices = %d/%d, want 0/0", rp, ds)
	}
	if n := len(f.state.RenderPasses().Get(0)); n != 1 {
		t.Fatalf("render pass entry has %d items, want 1", n)
	}
	if n := len(f.state.DescriptorSetLayouts().Get(0)); n != 2 {
		t.Fatalf("descriptor set layout entry has %d items, want 2", n)
	}
}

func TestTableEntriesDoNotMove(t *testing.T) {
	table := graphics.NewTable[int](debug.Discard(), "test")

	first := table.AddValues(1, 2, 3)
	for i := 0; i < 100; i++ {
		table.AddValues(i)
	}
	second, entry := table.Add(2)
	entry[0], entry[1] = 7, 8

	if first != 0 || second != 101 {
		t.Fatalf("indices = %d/%d", first, second)
	}
	if got := table.Get(0); len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Fatalf("entry 0 = %v", got)
	}
	if got := table.Get(second); got[0] != 7 || got[1] != 8 {
		t.Fatalf("entry %d = %v", second, got)
	}
	if table.Len() != 102 {
		t.Fatalf("len = %d", table.Len())
	}
}

func TestTableGetReturnsCopy(t *testing.T) {
	table := graphics.NewTable[int](debug.Discard(), "test")
	table.AddValues(1, 2)

	got := table.Get(0)
	got[0] = 99
	if table.Get(0)[0] != 1 {
		t.Fatal("Get exposed the stored entry")
	}
}

func TestTableOutOfRange(t *testing.T) {
	log := debug.Discard()
	table := graphics.NewTable[int](log, "test")
	table.AddValues(1)

	expectAssertion(t, func() { table.Get(1) })
	expectAssertion(t, func() { table.Get(-1) })
	expectAssertion(t, func() { table.Add(-1) })
	if log.Stats().Fatal == 0 {
		t.Fatal("assertions should be logged")
	}
}

func TestTableEmptyEntryWarns(t *testing.T) {
	log := debug.Discard()
	table := graphics.NewTable[int](log, "test")
	index, entry := table.Add(0)
	if index != 0 || len(entry) != 0 {
		t.Fatalf("got %d %v", index, entry)
	}
	if log.Stats().Warn != 1 {
		t.Fatalf("expected one warning, got %+v", log.Stats())
	}
}

func TestTableEach(t *testing.T) {
	table := graphics.NewTable[string](debug.Discard(), "test")
	table.AddValues("a")
	table.AddValues("b", "c")

	var sizes []int
	table.Each(func(i int, entry []string) {
		if i != len(sizes) {
			t.Fatalf("visited %d out of order", i)
		}
		sizes = append(sizes, len(entry))
	})
	if len(sizes) != 2 || sizes[0] != 1 || sizes[1] != 2 {
		t.Fatalf("sizes = %v", sizes)
	}
}

func TestAddRenderPassesRollsBack(t *testing.T) {
	f := initFixture(t)
	f.driver.Fail = map[string]int{"CreateRenderPass": 1}

	index, err := f.state.AddRenderPasses(core1_0.RenderPassCreateInfo{}, core1_0.RenderPassCreateInfo{})
	if err == nil || index != -1 {
		t.Fatalf("got %d, %v", index, err)
	}
	if f.driver.Count("DestroyRenderPass") != 1 {
		t.Fatalf("created pass should be destroyed, calls %v", f.driver.Calls)
	}
	if f.state.RenderPasses().Len() != 0 {
		t.Fatal("nothing should be registered")
	}
}

func TestAddDescriptorSetLayoutsRollsBack(t *testing.T) {
	f := initFixture(t)
	f.driver.Fail = map[string]int{"CreateDescriptorSetLayout": 2}

	_, err := f.state.AddDescriptorSetLayouts(
		core1_0.DescriptorSetLayoutCreateInfo{},
		core1_0.DescriptorSetLayoutCreateInfo{},
		core1_0.DescriptorSetLayoutCreateInfo{},
	)
	if err == nil {
		t.Fatal("expected an error")
	}
	if f.driver.LiveOf("descriptor set layout") != 0 {
		t.Fatal("created layouts leaked")
	}
	if f.state.DescriptorSetLayouts().Len() != 0 {
		t.Fatal("nothing should be registered")
	}
}
