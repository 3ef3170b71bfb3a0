// Package widget はショーケースウィジェットのクライアントランタイムを提供する。
//
// ランタイムは明示的なレンダーツリー（DocumentとNode）の上で動作する。
// 埋め込み先ページに相当するツリーからマウントポイントを検出し、
// ローディング表示の注入、ショーケースの取得、描画までを行う。
// ブラウザ向けの配布スクリプトはassetsディレクトリに同梱し、
// ハンドラー経由で配信する。
package widget

import "sync"

// Node はレンダーツリーの1要素を表す。
// 属性・子要素・描画済みコンテンツを保持し、
// 複数のマウント処理から並行に触られるため全操作をロックで保護する。
type Node struct {
	mu       sync.RWMutex
	tag      string
	attrs    map[string]string
	children []*Node
	content  string
}

// NewNode は指定タグのNodeを生成する。
func NewNode(tag string) *Node {
	return &Node{
		tag:   tag,
		attrs: make(map[string]string),
	}
}

// Tag はノードのタグ名を返す。
func (n *Node) Tag() string {
	return n.tag
}

// SetAttr は属性を設定する。
func (n *Node) SetAttr(name, value string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.attrs[name] = value
}

// Attr は属性値を返す。未設定の場合は空文字列を返す。
func (n *Node) Attr(name string) string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.attrs[name]
}

// HasAttr は属性が設定されているかを返す。
func (n *Node) HasAttr(name string) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	_, ok := n.attrs[name]
	return ok
}

// HasClass はclass属性（スペース区切り）に指定クラスが含まれるかを返す。
func (n *Node) HasClass(class string) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()

	rest := n.attrs["class"]
	for len(rest) > 0 {
		var token string
		if i := indexSpace(rest); i >= 0 {
			token, rest = rest[:i], rest[i+1:]
		} else {
			token, rest = rest, ""
		}
		if token == class {
			return true
		}
	}
	return false
}

func indexSpace(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' {
			return i
		}
	}
	return -1
}

// AppendChild は子ノードを末尾に追加する。
func (n *Node) AppendChild(child *Node) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.children = append(n.children, child)
}

// Children は子ノードのスナップショットを返す。
func (n *Node) Children() []*Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// SetContent はノードの描画済みコンテンツ（HTMLフラグメント）を置き換える。
func (n *Node) SetContent(html string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.content = html
}

// Content はノードの描画済みコンテンツを返す。
func (n *Node) Content() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.content
}

// Document はレンダーツリー全体と、ノード追加の監視コールバックを管理する。
type Document struct {
	mu        sync.RWMutex
	root      *Node
	observers []func(added *Node)
}

// NewDocument はbodyルートを持つDocumentを生成する。
func NewDocument() *Document {
	return &Document{
		root: NewNode("body"),
	}
}

// Root はルートノードを返す。
func (d *Document) Root() *Node {
	return d.root
}

// Observe はノード追加時に呼ばれるコールバックを登録する。
// コールバックには追加されたサブツリーのルートノードが渡される。
func (d *Document) Observe(fn func(added *Node)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.observers = append(d.observers, fn)
}

// AppendChild は親ノードに子ノードを追加し、登録済みの監視
// コールバックへ追加を通知する。
func (d *Document) AppendChild(parent, child *Node) {
	parent.AppendChild(child)

	d.mu.RLock()
	observers := make([]func(*Node), len(d.observers))
	copy(observers, d.observers)
	d.mu.RUnlock()

	for _, fn := range observers {
		fn(child)
	}
}

// QueryByClass はルートから指定深さまでを探索し、指定クラスを持つ
// ノードを文書順で返す。maxDepthが0以下の場合は何も返さない。
func (d *Document) QueryByClass(class string, maxDepth int) []*Node {
	var found []*Node
	collectByClass(d.root, class, maxDepth, &found)
	return found
}

// collectByClass はnodeの子孫をdepthRemaining段まで探索する。
func collectByClass(node *Node, class string, depthRemaining int, found *[]*Node) {
	if depthRemaining <= 0 {
		return
	}
	for _, child := range node.Children() {
		if child.HasClass(class) {
			*found = append(*found, child)
		}
		collectByClass(child, class, depthRemaining-1, found)
	}
}
