package widget

// MountHandler はマウントポイント検出時の処理インターフェース。
type MountHandler interface {
	Mount(node *Node)
}

// MountObserver はドキュメントへのノード追加を監視し、追加された
// サブツリーからマウントポイントを検出してハンドラーへ渡す。
//
// 探索は追加ノードを起点に有界の深さで行う。埋め込み先ページの
// 大規模なDOM変更で全ツリー走査が発生しないようにするためで、
// 深くネストされたマウントポイントは検出対象外となる。
type MountObserver struct {
	handler  MountHandler
	maxDepth int
}

// ObserveMounts はドキュメントの監視を開始する。
// maxDepthが0以下の場合はDefaultScanDepthを使用する。
func ObserveMounts(doc *Document, handler MountHandler, maxDepth int) *MountObserver {
	if maxDepth <= 0 {
		maxDepth = DefaultScanDepth
	}
	o := &MountObserver{
		handler:  handler,
		maxDepth: maxDepth,
	}
	doc.Observe(o.onAdded)
	return o
}

// onAdded は追加されたサブツリーを探索する。
func (o *MountObserver) onAdded(added *Node) {
	o.scan(added, o.maxDepth)
}

// scan はnodeとその子孫をdepthRemaining段まで探索する。
// 追加ノード自身を深さ1と数える。
func (o *MountObserver) scan(node *Node, depthRemaining int) {
	if depthRemaining <= 0 {
		return
	}
	if node.HasClass(MarkerClass) {
		o.handler.Mount(node)
	}
	for _, child := range node.Children() {
		o.scan(child, depthRemaining-1)
	}
}
