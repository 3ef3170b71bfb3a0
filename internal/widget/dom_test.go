package widget

import "testing"

func TestNode_Attrs(t *testing.T) {
	n := NewNode("div")

	if n.HasAttr("data-showcase-id") {
		t.Error("new node should have no attributes")
	}

	n.SetAttr("data-showcase-id", "alice-123")
	if got := n.Attr("data-showcase-id"); got != "alice-123" {
		t.Errorf("Attr() = %q, want %q", got, "alice-123")
	}
	if !n.HasAttr("data-showcase-id") {
		t.Error("HasAttr() = false, want true")
	}
}

func TestNode_HasClass(t *testing.T) {
	n := NewNode("div")
	n.SetAttr("class", "card devshelf-widget highlighted")

	if !n.HasClass("devshelf-widget") {
		t.Error("HasClass(devshelf-widget) = false, want true")
	}
	if !n.HasClass("card") {
		t.Error("HasClass(card) = false, want true")
	}
	if n.HasClass("devshelf") {
		t.Error("HasClass(devshelf) = true, want false (partial token)")
	}
	if n.HasClass("widget") {
		t.Error("HasClass(widget) = true, want false (partial token)")
	}
}

func TestDocument_QueryByClass(t *testing.T) {
	doc := NewDocument()

	first := NewNode("div")
	first.SetAttr("class", "devshelf-widget")
	doc.Root().AppendChild(first)

	section := NewNode("section")
	doc.Root().AppendChild(section)

	second := NewNode("div")
	second.SetAttr("class", "devshelf-widget")
	section.AppendChild(second)

	other := NewNode("div")
	other.SetAttr("class", "sidebar")
	doc.Root().AppendChild(other)

	found := doc.QueryByClass("devshelf-widget", DefaultScanDepth)
	if len(found) != 2 {
		t.Fatalf("len(found) = %d, want 2", len(found))
	}
	if found[0] != first || found[1] != second {
		t.Error("QueryByClass did not return nodes in document order")
	}
}

func TestDocument_QueryByClass_RespectsDepthBound(t *testing.T) {
	doc := NewDocument()

	// 深さ4にマウントポイントを配置（root直下が深さ1）
	level1 := NewNode("div")
	level2 := NewNode("div")
	level3 := NewNode("div")
	deep := NewNode("div")
	deep.SetAttr("class", "devshelf-widget")

	doc.Root().AppendChild(level1)
	level1.AppendChild(level2)
	level2.AppendChild(level3)
	level3.AppendChild(deep)

	if found := doc.QueryByClass("devshelf-widget", 3); len(found) != 0 {
		t.Errorf("depth 3: len(found) = %d, want 0", len(found))
	}
	if found := doc.QueryByClass("devshelf-widget", 4); len(found) != 1 {
		t.Errorf("depth 4: len(found) = %d, want 1", len(found))
	}
}

func TestDocument_AppendChild_NotifiesObservers(t *testing.T) {
	doc := NewDocument()

	var added []*Node
	doc.Observe(func(node *Node) {
		added = append(added, node)
	})

	child := NewNode("div")
	doc.AppendChild(doc.Root(), child)

	if len(added) != 1 {
		t.Fatalf("len(added) = %d, want 1", len(added))
	}
	if added[0] != child {
		t.Error("observer received unexpected node")
	}

	// 直接のAppendChildは通知しない（Document経由の追加のみ監視対象）
	doc.Root().AppendChild(NewNode("span"))
	if len(added) != 1 {
		t.Errorf("len(added) = %d, want 1 (direct append must not notify)", len(added))
	}
}
